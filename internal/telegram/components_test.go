package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tb "gopkg.in/lightningtipbot/telebot.v3"
)

func TestChainMessagePhotoWithCaption(t *testing.T) {
	msg := chainMessage([]Component{
		Plain{Text: "done"},
		ImageFile{Path: "/tmp/result.png"},
		Plain{Text: "3 left"},
	})
	photo, ok := msg.(*tb.Photo)
	assert.True(t, ok)
	assert.Equal(t, "/tmp/result.png", photo.File.FileLocal)
	assert.Equal(t, "done\n3 left", photo.Caption)
}

func TestChainMessageTextOnly(t *testing.T) {
	msg := chainMessage([]Component{Plain{Text: "nothing to show"}})
	assert.Equal(t, "nothing to show", msg)
}

func TestChainMessageURL(t *testing.T) {
	msg := chainMessage([]Component{ImageURL{URL: "https://example.com/a.png"}})
	photo, ok := msg.(*tb.Photo)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/a.png", photo.File.FileURL)
}

func TestChainMessageFirstImageWins(t *testing.T) {
	msg := chainMessage([]Component{
		ImageFile{Path: "/tmp/first.png"},
		ImageURL{URL: "https://example.com/second.png"},
	})
	photo, ok := msg.(*tb.Photo)
	assert.True(t, ok)
	assert.Equal(t, "/tmp/first.png", photo.File.FileLocal)
	assert.Empty(t, photo.File.FileURL)
}
