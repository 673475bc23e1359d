package catalog

import (
	"context"
	"io"

	"pcadmin/core/utils"

	"github.com/vmware/govmomi/vapi/library"
)

// Catalog is a content catalog of installable images keyed by name.
type Catalog interface {
	// ItemNames lists the names of the existing items.
	ItemNames(ctx context.Context) ([]string, error)
	// CreateFromReader creates an item from local bytes.
	CreateFromReader(ctx context.Context, item Item, r io.Reader, size int64) error
	// CreateFromURL creates an item that the catalog fetches from uri itself.
	CreateFromURL(ctx context.Context, item Item, uri string) error
}

// Item describes a catalog item to create.
type Item struct {
	// Name is the item name, unique within the catalog.
	Name string
	// FileName is the name of the single file stored in the item.
	FileName string
	// Type is the content library item type (iso or ovf).
	Type string
}

// TypeForFile returns the item type for a file name, matched on its
// extension. It returns "" for unsupported files.
func TypeForFile(name string) string {
	switch utils.Extension(name) {
	case "iso":
		return library.ItemTypeISO
	case "ova", "ovf":
		return library.ItemTypeOVF
	default:
		return ""
	}
}

// NewItem builds the item for a file: the name is the base name without its
// extension and the type follows the extension.
func NewItem(fileName string) Item {
	return Item{
		Name:     utils.BaseName(fileName),
		FileName: utils.FileName(fileName),
		Type:     TypeForFile(fileName),
	}
}
