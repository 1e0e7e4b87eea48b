package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/linkcardapp/linkcard-server/internal/errors"
	"github.com/linkcardapp/linkcard-server/internal/media/uploads"
	"github.com/linkcardapp/linkcard-server/internal/store"
)

func setupImportTest(t *testing.T) (*ImportService, *CardService, func()) {
	t.Helper()

	cards, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	storage, err := uploads.NewStorage(t.TempDir())
	require.NoError(t, err)
	fetcher := uploads.NewFetcher(storage, logger)

	return NewImportService(cards, fetcher, logger), cards, cleanup
}

func TestImportService_ConvertHTML(t *testing.T) {
	svc, _, cleanup := setupImportTest(t)
	defer cleanup()

	markdown, err := svc.ConvertHTML(`<p>Hello <strong>world</strong></p>`)
	require.NoError(t, err)

	assert.Contains(t, markdown, "Hello")
	assert.Contains(t, markdown, "**world**")
	assert.NotContains(t, markdown, "<p>")
}

func TestImportService_ConvertHTMLPlainTextPassthrough(t *testing.T) {
	svc, _, cleanup := setupImportTest(t)
	defer cleanup()

	markdown, err := svc.ConvertHTML("  just plain text, no markup  ")
	require.NoError(t, err)
	assert.Equal(t, "just plain text, no markup", markdown)
}

func TestImportService_ConvertHTMLValidation(t *testing.T) {
	svc, _, cleanup := setupImportTest(t)
	defer cleanup()

	_, err := svc.ConvertHTML("   ")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.ConvertHTML("<p>" + strings.Repeat("x", maxImportHTMLSize) + "</p>")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestImportService_ImportAvatar(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	require.NoError(t, png.Encode(&buf, img))

	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	defer remote.Close()

	svc, cards, cleanup := setupImportTest(t)
	defer cleanup()
	ctx := context.Background()

	path, err := svc.ImportAvatar(ctx, store.GuestIdentity, remote.URL+"/avatar.png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, "/uploads/"))
	assert.True(t, strings.HasSuffix(path, ".png"))

	doc, err := cards.Get(ctx, store.GuestIdentity)
	require.NoError(t, err)
	assert.Equal(t, path, doc.ProfileImage)
}

func TestImportService_ImportAvatarBadURL(t *testing.T) {
	svc, _, cleanup := setupImportTest(t)
	defer cleanup()

	_, err := svc.ImportAvatar(context.Background(), store.GuestIdentity, "http://127.0.0.1:1/nope.png")
	assert.ErrorIs(t, err, domainerrors.ErrUpstream)

	_, err = svc.ImportAvatar(context.Background(), store.GuestIdentity, "")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
