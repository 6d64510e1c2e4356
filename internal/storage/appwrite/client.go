// Package appwrite implements storage.Storage on top of the Appwrite
// Databases API. Every record type lives in its own collection.
package appwrite

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sdk "github.com/appwrite/sdk-for-go/appwrite"
	"github.com/appwrite/sdk-for-go/databases"
	"github.com/appwrite/sdk-for-go/query"
	"github.com/chris-regnier/focusflow/internal/storage"
)

// pageSize is the number of documents requested per list call.
const pageSize = 100

// Config holds connection settings for an Appwrite project.
type Config struct {
	Endpoint   string // e.g. https://cloud.appwrite.io/v1
	ProjectID  string
	APIKey     string
	DatabaseID string
}

// Validate checks that the required connection fields are set.
func (c Config) Validate() error {
	var missing []string
	if c.Endpoint == "" {
		missing = append(missing, "appwrite.endpoint")
	}
	if c.ProjectID == "" {
		missing = append(missing, "appwrite.project_id")
	}
	if c.DatabaseID == "" {
		missing = append(missing, "appwrite.database_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", storage.ErrStorage, strings.Join(missing, ", "))
	}
	return nil
}

// client narrows the SDK's Databases service to one database.
type client struct {
	db  string
	dbs *databases.Databases
}

func newClient(cfg Config) *client {
	clt := sdk.NewClient(
		sdk.WithEndpoint(strings.TrimRight(cfg.Endpoint, "/")),
		sdk.WithProject(cfg.ProjectID),
		sdk.WithKey(cfg.APIKey),
	)
	return &client{db: cfg.DatabaseID, dbs: sdk.NewDatabases(clt)}
}

// apiError is satisfied by the SDK's AppwriteError.
type apiError interface {
	error
	GetStatusCode() int
	GetMessage() string
}

// mapErr converts SDK errors into storage sentinels. conflict is the
// sentinel reported for HTTP 409.
func mapErr(err error, conflict error) error {
	if err == nil {
		return nil
	}
	var ae apiError
	if !errors.As(err, &ae) {
		if errors.Is(err, storage.ErrStorage) {
			return err
		}
		return fmt.Errorf("%w: %v", storage.ErrStorage, err)
	}
	switch ae.GetStatusCode() {
	case http.StatusNotFound:
		return storage.ErrNotFound
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", conflict, ae.GetMessage())
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", storage.ErrValidation, ae.GetMessage())
	}
	return fmt.Errorf("%w: appwrite: %d %s", storage.ErrStorage, ae.GetStatusCode(), ae.GetMessage())
}

func (c *client) create(collection, id string, data any) error {
	_, err := c.dbs.CreateDocument(c.db, collection, id, data)
	return err
}

func (c *client) get(collection, id string, out any) error {
	doc, err := c.dbs.GetDocument(c.db, collection, id)
	if err != nil {
		return err
	}
	return decode(doc.Decode, out)
}

func (c *client) update(collection, id string, data any, out any) error {
	doc, err := c.dbs.UpdateDocument(c.db, collection, id, c.dbs.WithUpdateDocumentData(data))
	if err != nil || out == nil {
		return err
	}
	return decode(doc.Decode, out)
}

func (c *client) delete(collection, id string) error {
	_, err := c.dbs.DeleteDocument(c.db, collection, id)
	return err
}

func decode(fn func(any) error, out any) error {
	if err := fn(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", storage.ErrStorage, err)
	}
	return nil
}

// list fetches every document in collection matching filters, following
// limit/offset pages. fn receives each raw document.
func (c *client) list(collection string, filters []string, fn func(json.RawMessage) error) error {
	offset := 0
	for {
		qs := append(append([]string{}, filters...), query.Limit(pageSize), query.Offset(offset))
		res, err := c.dbs.ListDocuments(c.db, collection, c.dbs.WithListDocumentsQueries(qs))
		if err != nil {
			return err
		}
		var page struct {
			Total     int               `json:"total"`
			Documents []json.RawMessage `json:"documents"`
		}
		if err := decode(res.Decode, &page); err != nil {
			return err
		}
		for _, raw := range page.Documents {
			if err := fn(raw); err != nil {
				return err
			}
		}
		offset += len(page.Documents)
		if len(page.Documents) < pageSize || offset >= page.Total {
			return nil
		}
	}
}

// listIDs returns the document IDs matching filters.
func (c *client) listIDs(collection string, filters ...string) ([]string, error) {
	var out []string
	err := c.list(collection, filters, func(raw json.RawMessage) error {
		var doc struct {
			ID string `json:"$id"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("%w: decoding document: %v", storage.ErrStorage, err)
		}
		out = append(out, doc.ID)
		return nil
	})
	return out, err
}
