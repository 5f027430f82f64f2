package board

import (
	"encoding/json"
	"fmt"

	"github.com/twpayne/go-polyline"
)

// Document is the serialized form of a board, the fragment embedded into
// the externally-owned project file. Besides the raw features it carries
// derived display values (measurement labels, encoded paths) so the report
// generator downstream never recomputes geometry; those values are derived
// at export time and ignored on load.
type Document struct {
	Version  int               `json:"version"`
	Features []DocumentFeature `json:"features"`
}

// DocumentFeature is a Feature plus its exported derived values.
type DocumentFeature struct {
	Feature

	// Measurement is the formatted length/area/label at export time.
	Measurement string `json:"measurement,omitempty"`
	// EncodedPath is the Google encoded polyline of the coordinates, used
	// by the report generator for static-map paths.
	EncodedPath string `json:"encodedPath,omitempty"`
}

const documentVersion = 1

// ExportDocument snapshots the store into its embeddable form.
func ExportDocument(s *Store) Document {
	features := s.List()
	doc := Document{Version: documentVersion, Features: make([]DocumentFeature, 0, len(features))}
	for _, f := range features {
		df := DocumentFeature{Feature: f, Measurement: f.MeasurementLabel()}
		if len(f.Coords) > 0 {
			coords := make([][]float64, len(f.Coords))
			for i, p := range f.Coords {
				coords[i] = []float64{p.Lat, p.Lng}
			}
			df.EncodedPath = string(polyline.EncodeCoords(coords))
		}
		doc.Features = append(doc.Features, df)
	}
	return doc
}

// MarshalDocument renders the store as the JSON fragment for the project
// file.
func MarshalDocument(s *Store) ([]byte, error) {
	return json.MarshalIndent(ExportDocument(s), "", "  ")
}

// LoadDocument replaces the store contents with the features of a
// previously serialized document. Derived values in the document are
// discarded; they are recomputed on demand.
func LoadDocument(s *Store, data []byte) error {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}
	features := make([]Feature, len(doc.Features))
	for i, df := range doc.Features {
		features[i] = df.Feature
	}
	if err := s.Replace(features); err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	return nil
}
