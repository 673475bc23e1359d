package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/vmware/govmomi/vapi/library"
	"github.com/vmware/govmomi/vapi/rest"
	"github.com/vmware/govmomi/vim25/soap"
	"go.uber.org/zap"
)

// Update session transfer types.
const (
	sourcePush = "PUSH"
	sourcePull = "PULL"
)

// Library is a Catalog backed by a vSphere content library.
type Library struct {
	manager      *library.Manager
	library      *library.Library
	logger       *zap.Logger
	pollInterval time.Duration
}

// NewLibrary binds to the content library identified by name or ID.
func NewLibrary(ctx context.Context, c *rest.Client, selector string, logger *zap.Logger) (*Library, error) {
	if selector == "" {
		return nil, errors.New("content library is not set")
	}

	m := library.NewManager(c)

	lib, err := m.GetLibraryByName(ctx, selector)
	if err != nil {
		byID, idErr := m.GetLibraryByID(ctx, selector)
		if idErr != nil {
			return nil, fmt.Errorf("content library %q not found: %w", selector, err)
		}
		lib = byID
	}

	return &Library{
		manager:      m,
		library:      lib,
		logger:       logger,
		pollInterval: 3 * time.Second,
	}, nil
}

// LibraryNames lists the names of all content libraries.
func LibraryNames(ctx context.Context, c *rest.Client) ([]string, error) {
	libs, err := library.NewManager(c).GetLibraries(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(libs))
	for _, lib := range libs {
		names = append(names, lib.Name)
	}
	return names, nil
}

// Name returns the name of the bound library.
func (l *Library) Name() string {
	return l.library.Name
}

// ItemNames lists the names of the items in the library.
func (l *Library) ItemNames(ctx context.Context) ([]string, error) {
	items, err := l.manager.GetLibraryItems(ctx, l.library.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items of library %s: %w", l.library.Name, err)
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return names, nil
}

// CreateFromReader creates the item and pushes size bytes from r into it.
func (l *Library) CreateFromReader(ctx context.Context, item Item, r io.Reader, size int64) error {
	return l.create(ctx, item, func(sessionID string) error {
		update, err := l.manager.AddLibraryItemFile(ctx, sessionID, library.UpdateFile{
			Name:       item.FileName,
			SourceType: sourcePush,
			Size:       size,
		})
		if err != nil {
			return err
		}

		u, err := url.Parse(update.UploadEndpoint.URI)
		if err != nil {
			return err
		}

		p := soap.DefaultUpload
		p.ContentLength = size

		return l.manager.Upload(ctx, r, u, &p)
	})
}

// CreateFromURL creates the item and lets vCenter pull its file from uri.
func (l *Library) CreateFromURL(ctx context.Context, item Item, uri string) error {
	return l.create(ctx, item, func(sessionID string) error {
		_, err := l.manager.AddLibraryItemFile(ctx, sessionID, library.UpdateFile{
			Name:           item.FileName,
			SourceType:     sourcePull,
			SourceEndpoint: &library.TransferEndpoint{URI: uri},
		})
		return err
	})
}

// create runs one update session. On any failure the session is cancelled
// and the new item deleted, so no half-created item is left behind.
func (l *Library) create(ctx context.Context, item Item, transfer func(sessionID string) error) (err error) {
	if item.Type == "" {
		return fmt.Errorf("unsupported file type for %s", item.FileName)
	}

	itemID, err := l.manager.CreateLibraryItem(ctx, library.Item{
		Name:      item.Name,
		Type:      item.Type,
		LibraryID: l.library.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to create library item %s: %w", item.Name, err)
	}

	sessionID, err := l.manager.CreateLibraryItemUpdateSession(ctx, library.Session{LibraryItemID: itemID})
	if err != nil {
		l.deleteItem(ctx, itemID, item.Name)
		return fmt.Errorf("failed to open update session for %s: %w", item.Name, err)
	}

	defer func() {
		if err == nil {
			return
		}
		if cerr := l.manager.CancelLibraryItemUpdateSession(ctx, sessionID); cerr != nil {
			l.logger.Warn("Failed to cancel update session", zap.String("item", item.Name), zap.Error(cerr))
		}
		l.deleteItem(ctx, itemID, item.Name)
	}()

	if err = transfer(sessionID); err != nil {
		return fmt.Errorf("failed to transfer %s: %w", item.FileName, err)
	}

	if err = l.manager.CompleteLibraryItemUpdateSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to complete update session for %s: %w", item.Name, err)
	}

	if err = l.manager.WaitOnLibraryItemUpdateSession(ctx, sessionID, l.pollInterval, nil); err != nil {
		return fmt.Errorf("update session for %s failed: %w", item.Name, err)
	}

	return nil
}

func (l *Library) deleteItem(ctx context.Context, itemID, name string) {
	if err := l.manager.DeleteLibraryItem(ctx, &library.Item{ID: itemID}); err != nil {
		l.logger.Warn("Failed to delete incomplete library item", zap.String("item", name), zap.Error(err))
	}
}
