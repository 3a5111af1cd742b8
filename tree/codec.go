package tree

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/brettbedarf/treestore"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Codec converts a tree to and from its persisted document.
// Parent and repository references are never encoded; Decode restores the
// parent references and the repository sets its own when it adopts the root.
type Codec interface {
	Encode(root *Folder) ([]byte, error)
	Decode(data []byte) (*Folder, error)
}

// Document formats understood by [CodecFor]
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// CodecFor returns the codec for format. indent only affects JSON.
func CodecFor(format string, indent bool) (Codec, error) {
	switch format {
	case FormatJSON:
		return &JSONCodec{Indent: indent}, nil
	case FormatYAML:
		return &YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", treestore.ErrUnknownFormat, format)
	}
}

// folderDoc is the persisted form of a folder. Each entry of Contents
// carries exactly one of its kind tags.
type folderDoc struct {
	ID       string     `json:"id" yaml:"id"`
	Name     string     `json:"name" yaml:"name"`
	Contents []entryDoc `json:"contents" yaml:"contents"`
}

type fileDoc struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type entryDoc struct {
	Folder *folderDoc `json:"folder,omitempty" yaml:"folder,omitempty"`
	File   *fileDoc   `json:"file,omitempty" yaml:"file,omitempty"`
}

// JSONCodec stores the tree as JSON
type JSONCodec struct {
	Indent bool // pretty print with two space indentation
}

func (c *JSONCodec) Encode(root *Folder) ([]byte, error) {
	doc := toFolderDoc(root)
	if c.Indent {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

func (c *JSONCodec) Decode(data []byte) (*Folder, error) {
	var doc folderDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", treestore.ErrCorrupt, err)
	}
	return fromDoc(&doc)
}

// YAMLCodec stores the tree as YAML
type YAMLCodec struct{}

func (c *YAMLCodec) Encode(root *Folder) ([]byte, error) {
	return yaml.Marshal(toFolderDoc(root))
}

func (c *YAMLCodec) Decode(data []byte) (*Folder, error) {
	var doc folderDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", treestore.ErrCorrupt, err)
	}
	return fromDoc(&doc)
}

func toFolderDoc(f *Folder) *folderDoc {
	doc := &folderDoc{
		ID:       f.id.String(),
		Name:     f.name,
		Contents: make([]entryDoc, 0, len(f.contents)),
	}
	for _, c := range f.contents {
		switch it := c.(type) {
		case *Folder:
			doc.Contents = append(doc.Contents, entryDoc{Folder: toFolderDoc(it)})
		case *File:
			doc.Contents = append(doc.Contents, entryDoc{File: &fileDoc{ID: it.id.String(), Name: it.name}})
		}
	}
	return doc
}

// fromDoc builds the folder graph and then relinks parents in a separate pass
func fromDoc(doc *folderDoc) (*Folder, error) {
	seen := make(map[uuid.UUID]struct{})
	root, err := decodeFolder(doc, seen)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", treestore.ErrCorrupt, err)
	}
	relink(root)
	return root, nil
}

var errEmptyDocument = errors.New("empty document")

func decodeFolder(doc *folderDoc, seen map[uuid.UUID]struct{}) (*Folder, error) {
	if doc.ID == "" && doc.Name == "" && doc.Contents == nil {
		return nil, errEmptyDocument
	}
	id, err := decodeID(doc.ID, seen)
	if err != nil {
		return nil, err
	}
	f := NewFolder(doc.Name, id)
	f.contents = make([]Item, 0, len(doc.Contents))
	for i, entry := range doc.Contents {
		switch {
		case entry.Folder != nil && entry.File != nil:
			return nil, fmt.Errorf("entry %d of folder %s is tagged both folder and file", i, id)
		case entry.Folder != nil:
			sub, err := decodeFolder(entry.Folder, seen)
			if err != nil {
				return nil, err
			}
			f.contents = append(f.contents, sub)
		case entry.File != nil:
			fid, err := decodeID(entry.File.ID, seen)
			if err != nil {
				return nil, err
			}
			f.contents = append(f.contents, NewFile(entry.File.Name, fid))
		default:
			return nil, fmt.Errorf("entry %d of folder %s has no kind tag", i, id)
		}
	}
	// documents written by this package are already in order
	f.sort()
	return f, nil
}

func decodeID(s string, seen map[uuid.UUID]struct{}) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", s, err)
	}
	if _, dup := seen[id]; dup {
		return uuid.Nil, fmt.Errorf("duplicate id %s", id)
	}
	seen[id] = struct{}{}
	return id, nil
}
