package domain

// WidgetType discriminates the custom widget union. Each type carries its
// own payload field on CustomWidget; the others stay nil.
type WidgetType string

const (
	WidgetText    WidgetType = "text"
	WidgetLinks   WidgetType = "links"
	WidgetCounter WidgetType = "counter"
	WidgetGallery WidgetType = "gallery"
	WidgetAudio   WidgetType = "audio"
	WidgetPoll    WidgetType = "poll"
)

// WidgetLink is one entry of a links widget.
type WidgetLink struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// GalleryItem is one image of a gallery widget.
type GalleryItem struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// CounterContent is the payload of a counter widget.
type CounterContent struct {
	Label  string `json:"label"`
	Value  int    `json:"value"`
	Target int    `json:"target,omitempty"`
}

// AudioContent is the payload of an audio widget.
type AudioContent struct {
	URL      string  `json:"url"`
	Title    string  `json:"title,omitempty"`
	Artist   string  `json:"artist,omitempty"`
	Duration float64 `json:"duration,omitempty"` // seconds
}

// PollOption is one choice of a poll widget.
type PollOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Votes int    `json:"votes"`
}

// PollContent is the payload of a poll widget.
type PollContent struct {
	Question string       `json:"question"`
	Options  []PollOption `json:"options"`
}

// WidgetSettings is per-widget presentation styling, shared by all types.
type WidgetSettings struct {
	BackgroundColor string `json:"backgroundColor,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
	TextAlign       string `json:"textAlign,omitempty"`
	Animation       string `json:"animation,omitempty"`
	Border          string `json:"border,omitempty"`
}

// CustomWidget is a user-added content block. Type selects which payload
// pointer is populated.
type CustomWidget struct {
	ID       string         `json:"id"`
	Type     WidgetType     `json:"type"`
	Title    string         `json:"title"`
	Settings WidgetSettings `json:"settings"`
	Enabled  bool           `json:"enabled"`
	Order    int            `json:"order"`

	Text    *string         `json:"text,omitempty"`
	Links   []WidgetLink    `json:"links,omitempty"`
	Counter *CounterContent `json:"counter,omitempty"`
	Gallery []GalleryItem   `json:"gallery,omitempty"`
	Audio   *AudioContent   `json:"audio,omitempty"`
	Poll    *PollContent    `json:"poll,omitempty"`
}

// Clone returns a deep copy of the widget.
func (w CustomWidget) Clone() CustomWidget {
	out := w
	if w.Text != nil {
		v := *w.Text
		out.Text = &v
	}
	out.Links = append([]WidgetLink(nil), w.Links...)
	if w.Counter != nil {
		v := *w.Counter
		out.Counter = &v
	}
	out.Gallery = append([]GalleryItem(nil), w.Gallery...)
	if w.Audio != nil {
		v := *w.Audio
		out.Audio = &v
	}
	if w.Poll != nil {
		v := *w.Poll
		v.Options = append([]PollOption(nil), w.Poll.Options...)
		out.Poll = &v
	}
	return out
}

// Valid reports whether the widget's payload matches its declared type.
func (w CustomWidget) Valid() bool {
	switch w.Type {
	case WidgetText:
		return w.Text != nil
	case WidgetLinks:
		return w.Links != nil
	case WidgetCounter:
		return w.Counter != nil
	case WidgetGallery:
		return w.Gallery != nil
	case WidgetAudio:
		return w.Audio != nil
	case WidgetPoll:
		return w.Poll != nil
	default:
		return false
	}
}
