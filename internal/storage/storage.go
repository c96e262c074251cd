// Package storage writes catalog snapshots to a local directory or a GCS
// bucket.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"folio/internal/model"
)

const (
	galleryObject   = "gallery.json"
	portfolioObject = "portfolio.json"
)

// Sink is an export destination. Names are slash separated.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

type GallerySnapshot struct {
	ExportedAt time.Time               `json:"exportedAt"`
	Source     string                  `json:"source"`
	Category   model.Category          `json:"category"`
	Items      []model.DisplayableItem `json:"items"`
	Featured   int                     `json:"featured"`
}

type exportObject struct {
	name  string
	value any
}

// Export writes the composed gallery and the raw portfolio feed under
// prefix and returns the locations written.
func Export(ctx context.Context, sink Sink, prefix string, snap GallerySnapshot, portfolio *model.Portfolio) ([]string, error) {
	if snap.ExportedAt.IsZero() {
		snap.ExportedAt = time.Now().UTC()
	}
	if snap.Items == nil {
		snap.Items = []model.DisplayableItem{}
	}

	objects := []exportObject{{galleryObject, snap}}
	if portfolio != nil {
		objects = append(objects, exportObject{portfolioObject, portfolio})
	}

	var written []string
	for _, obj := range objects {
		data, err := json.MarshalIndent(obj.value, "", "  ")
		if err != nil {
			return written, fmt.Errorf("failed to marshal %s: %w", obj.name, err)
		}
		location, err := sink.Put(ctx, path.Join(prefix, obj.name), data)
		if err != nil {
			return written, err
		}
		written = append(written, location)
	}
	return written, nil
}
