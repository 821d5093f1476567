package knowledge

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/verdanthealth/medguard/internal/logging"
)

// DocumentType classifies a collaborator document by the shape of its
// payload.
type DocumentType string

const (
	// DocumentText is free text (OCR'd or extracted); it gets chunked.
	DocumentText DocumentType = "text_document"

	// DocumentSpreadsheet is normalized tabular rows; kept whole so
	// row-level semantics survive.
	DocumentSpreadsheet DocumentType = "spreadsheet"

	// DocumentJSON is an opaque structured object; kept whole.
	DocumentJSON DocumentType = "json_object"
)

// RawDocument is a normalized upstream document ready for chunking.
type RawDocument struct {
	Source  string
	Type    DocumentType
	Content string
}

// sourcePayload is the JSON shape produced by the preprocessing
// collaborators. Exactly one of the three content fields is expected.
type sourcePayload struct {
	SourceFile   string          `json:"source_file"`
	CleanedText  string          `json:"cleaned_text"`
	Records      json.RawMessage `json:"records"`
	OriginalData json.RawMessage `json:"original_data"`
}

// LoadDocuments reads every preprocessed JSON document in the given
// folders and normalizes it into a RawDocument.
//
// One bad file never aborts the batch: empty and malformed files are
// skipped with a warning. Files within a folder are visited in sorted
// name order and folders in the order given, so repeated runs over the
// same inputs see the same document order.
func LoadDocuments(ctx context.Context, folders []string, logger *logging.Logger) []RawDocument {
	if logger == nil {
		logger = logging.NewNop()
	}

	var docs []RawDocument
	for _, folder := range folders {
		paths, err := filepath.Glob(filepath.Join(folder, "*.json"))
		if err != nil {
			logger.Warn(ctx, "skipping unreadable source folder",
				zap.String("folder", folder), zap.Error(err))
			continue
		}

		for _, path := range paths {
			doc, ok := loadDocument(ctx, path, logger)
			if ok {
				docs = append(docs, doc)
			}
		}
		logger.Info(ctx, "source folder loaded",
			zap.String("folder", folder), zap.Int("files", len(paths)))
	}

	logger.Info(ctx, "documents loaded", zap.Int("documents", len(docs)))
	return docs
}

func loadDocument(ctx context.Context, path string, logger *logging.Logger) (RawDocument, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn(ctx, "skipping unreadable file", zap.String("file", path), zap.Error(err))
		return RawDocument{}, false
	}
	if len(data) == 0 {
		logger.Warn(ctx, "skipping empty file", zap.String("file", path))
		return RawDocument{}, false
	}

	var payload sourcePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		logger.Warn(ctx, "skipping corrupt file", zap.String("file", path), zap.Error(err))
		return RawDocument{}, false
	}

	source := payload.SourceFile
	if source == "" {
		source = filepath.Base(path)
	}

	doc := RawDocument{Source: source}
	switch {
	case payload.CleanedText != "":
		doc.Type = DocumentText
		doc.Content = payload.CleanedText
	case jsonPresent(payload.Records):
		doc.Type = DocumentSpreadsheet
		doc.Content = string(payload.Records)
	case jsonPresent(payload.OriginalData):
		doc.Type = DocumentJSON
		doc.Content = string(payload.OriginalData)
	default:
		logger.Warn(ctx, "skipping file with no recognized content",
			zap.String("file", path))
		return RawDocument{}, false
	}

	return doc, true
}

// jsonPresent reports whether a raw JSON field carries a value.
func jsonPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
