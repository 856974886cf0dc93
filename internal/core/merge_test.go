package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeMetadataChildKeysWin(t *testing.T) {
	dst := map[string]any{"mainClass": "child.Main", "type": "release"}
	src := map[string]any{"mainClass": "parent.Main", "assets": "5"}
	MergeMetadata(dst, src)
	assert.Equal(t, "child.Main", dst["mainClass"])
	assert.Equal(t, "release", dst["type"])
	assert.Equal(t, "5", dst["assets"])
}

func TestMergeMetadataRecursesObjects(t *testing.T) {
	dst := map[string]any{
		"downloads": map[string]any{"client": map[string]any{"url": "child"}},
	}
	src := map[string]any{
		"downloads": map[string]any{
			"client": map[string]any{"url": "parent", "size": float64(10)},
			"server": map[string]any{"url": "parent-server"},
		},
	}
	MergeMetadata(dst, src)
	downloads := dst["downloads"].(map[string]any)
	client := downloads["client"].(map[string]any)
	assert.Equal(t, "child", client["url"])
	assert.Equal(t, float64(10), client["size"])
	assert.Contains(t, downloads, "server")
}

func TestMergeMetadataConcatenatesListsChildFirst(t *testing.T) {
	dst := map[string]any{"libraries": []any{"child-lib"}}
	src := map[string]any{"libraries": []any{"parent-lib"}}
	MergeMetadata(dst, src)
	assert.Equal(t, []any{"child-lib", "parent-lib"}, dst["libraries"])
}

func TestMergeMetadataTypeConflictKeepsChild(t *testing.T) {
	dst := map[string]any{"arguments": "legacy"}
	src := map[string]any{"arguments": map[string]any{"game": []any{}}}
	MergeMetadata(dst, src)
	assert.Equal(t, "legacy", dst["arguments"])
}
