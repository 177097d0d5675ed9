package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulmenhq/fcman/pkg/collection"
)

func findTree() *collection.Collection {
	coll := collection.New()

	music := collection.NewDirectory(coll.RootNode, "music")
	album := collection.NewFile(music, "album.flac", 0, 0, "")
	album.AddMeta(collection.TagRecord("Audio"))
	album.AddMeta(collection.TagRecord("lossless"))
	album.AddMeta(collection.DescriptionRecord("Live concert recording"))

	video := collection.NewFile(coll.RootNode, "movie.mkv", 0, 0, "")
	video.AddMeta(collection.TagRecord("video"))
	video.AddMeta(collection.DescriptionRecord("Concert film"))

	return coll
}

func TestFindTags(t *testing.T) {
	coll := findTree()

	rec := &statusRecorder{}
	assert.True(t, FindTags(coll.RootNode, []string{"audio"}, false, rec))
	assert.Equal(t, []string{"/music/album.flac"}, rec.paths("FINDTAG"))

	// Any-of matching.
	rec = &statusRecorder{}
	assert.True(t, FindTags(coll.RootNode, []string{"audio", "video"}, false, rec))
	assert.Len(t, rec.paths("FINDTAG"), 2)

	// All-of matching.
	rec = &statusRecorder{}
	assert.True(t, FindTags(coll.RootNode, []string{"audio", "lossless"}, true, rec))
	assert.Equal(t, []string{"/music/album.flac"}, rec.paths("FINDTAG"))

	rec = &statusRecorder{}
	assert.False(t, FindTags(coll.RootNode, []string{"audio", "video"}, true, rec))
	assert.Empty(t, rec.entries)

	assert.False(t, FindTags(coll.RootNode, []string{"nosuch"}, false, &statusRecorder{}))
}

func TestFindDescs(t *testing.T) {
	coll := findTree()

	rec := &statusRecorder{}
	assert.True(t, FindDescs(coll.RootNode, []string{"CONCERT"}, false, rec))
	assert.Len(t, rec.paths("FINDDESC"), 2)

	rec = &statusRecorder{}
	assert.True(t, FindDescs(coll.RootNode, []string{"concert", "film"}, true, rec))
	assert.Equal(t, []string{"/movie.mkv"}, rec.paths("FINDDESC"))

	assert.False(t, FindDescs(coll.RootNode, []string{"symphony"}, false, &statusRecorder{}))
}

func TestFindPathGlob(t *testing.T) {
	coll := findTree()

	rec := &statusRecorder{}
	found, err := FindPath(coll.RootNode, "/music/*.flac", false, rec)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"/music/album.flac"}, rec.paths("FINDPATH"))

	rec = &statusRecorder{}
	found, err = FindPath(coll.RootNode, "/**/*.flac", false, rec)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = FindPath(coll.RootNode, "/MUSIC/*.FLAC", false, &statusRecorder{})
	require.NoError(t, err)
	assert.False(t, found)

	found, err = FindPath(coll.RootNode, "/MUSIC/*.FLAC", true, &statusRecorder{})
	require.NoError(t, err)
	assert.True(t, found)
}

func TestFindPathRegex(t *testing.T) {
	coll := findTree()

	rec := &statusRecorder{}
	found, err := FindPath(coll.RootNode, `r:\.mkv$`, false, rec)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"/movie.mkv"}, rec.paths("FINDPATH"))

	_, err = FindPath(coll.RootNode, "r:(unclosed", false, &statusRecorder{})
	assert.Error(t, err)
}
