package core

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"portacraft/internal/ports"
	"portacraft/internal/types"
)

// EventSink receives progress events from core resolvers. A nil sink is valid
// and drops every event.
type EventSink func(types.Event)

func (s EventSink) emit(event types.Event) {
	if s != nil {
		s(event)
	}
}

// VersionNode is one metadata document of an inheritance chain. The parent
// link is set while the resolver walks the chain; a node without an
// inheritsFrom key terminates the chain.
type VersionNode struct {
	ID       string
	Dir      string
	Metadata map[string]any
	Parent   *VersionNode
}

// NewVersionNode builds a node for the given id inside the context's versions
// directory.
func NewVersionNode(ctx types.InstallContext, id string) *VersionNode {
	return &VersionNode{ID: id, Dir: ctx.VersionDir(id)}
}

// MetadataFile returns the path of the node's cached metadata document.
func (n *VersionNode) MetadataFile() string {
	return filepath.Join(n.Dir, n.ID+".json")
}

// ClientFile returns the path of the node's client archive.
func (n *VersionNode) ClientFile() string {
	return filepath.Join(n.Dir, n.ID+".jar")
}

// ReadMetadataFile loads the cached metadata document into the node. It
// reports false when the file is missing or not valid JSON.
func (n *VersionNode) ReadMetadataFile() bool {
	data, err := os.ReadFile(n.MetadataFile())
	if err != nil {
		return false
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return false
	}
	n.Metadata = doc
	return true
}

// Recurse returns the chain from this node to the last ancestor, child first.
func (n *VersionNode) Recurse() []*VersionNode {
	var chain []*VersionNode
	for node := n; node != nil; node = node.Parent {
		chain = append(chain, node)
	}
	return chain
}

// Merge flattens the chain into one document, child keys taking priority.
func (n *VersionNode) Merge() map[string]any {
	merged := map[string]any{}
	for _, node := range n.Recurse() {
		MergeMetadata(merged, node.Metadata)
	}
	return merged
}

// MetadataResolver walks a version's inheritance chain, loading each node from
// the local cache when the repository trusts it and fetching it otherwise, then
// merges the chain child-over-parent.
type MetadataResolver struct {
	Repo ports.VersionRepositoryPort
	// MaxParents bounds the chain depth, defaulting to 10.
	MaxParents int
}

const defaultMaxParents = 10

// Resolve returns the head of the resolved chain. Call Merge on it for the
// flattened document.
func (r MetadataResolver) Resolve(ctx context.Context, install types.InstallContext, rootID string, sink EventSink) (*VersionNode, error) {
	maxParents := r.MaxParents
	if maxParents <= 0 {
		maxParents = defaultMaxParents
	}

	var head, tail *VersionNode
	var chainIDs []string
	id := rootID

	for id != "" {
		if len(chainIDs) >= maxParents {
			return nil, TooManyParentsError(chainIDs)
		}
		chainIDs = append(chainIDs, id)
		sink.emit(types.VersionLoadingEvent{Version: id})

		node := NewVersionNode(install, id)
		if err := r.loadOrFetch(ctx, node, sink); err != nil {
			return nil, err
		}
		sink.emit(types.VersionLoadedEvent{Version: id})

		if tail != nil {
			tail.Parent = node
		} else {
			head = node
		}
		tail = node

		next, err := popInheritsFrom(node.Metadata)
		if err != nil {
			return nil, err
		}
		id = next
	}

	log.Debug().Strs("chain", chainIDs).Msg("version chain resolved")
	return head, nil
}

func (r MetadataResolver) loadOrFetch(ctx context.Context, node *VersionNode, sink EventSink) error {
	if node.ReadMetadataFile() && r.Repo.ValidateVersion(ctx, node.ID, node.MetadataFile()) {
		return nil
	}
	sink.emit(types.VersionFetchingEvent{Version: node.ID})
	doc, err := r.Repo.FetchVersion(ctx, node.ID, node.MetadataFile())
	if err != nil {
		return err
	}
	node.Metadata = doc
	return nil
}

// popInheritsFrom removes and returns the inheritsFrom key, so that the merged
// document no longer carries chain links.
func popInheritsFrom(doc map[string]any) (string, error) {
	raw, ok := doc["inheritsFrom"]
	if !ok {
		return "", nil
	}
	delete(doc, "inheritsFrom")
	id, err := asString(raw, "metadata: /inheritsFrom")
	if err != nil {
		return "", err
	}
	return id, nil
}
