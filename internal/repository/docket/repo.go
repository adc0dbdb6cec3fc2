// Package docket persists docket and filing documents as RediSearch JSON
// records. The filing index carries the denormalized docket copy, so
// every bulk propagation pass runs through here.
package docket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/courtlens/docketdex/internal/db"
	"github.com/courtlens/docketdex/internal/domain"
	domdocket "github.com/courtlens/docketdex/internal/domain/docket"
	domfiling "github.com/courtlens/docketdex/internal/domain/filing"
)

// pageSize bounds one FT.SEARCH page when walking a docket's filings.
const pageSize = 1000

// store is the consumer interface for document operations (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	DelMulti(ctx context.Context, keys []string) error
	Exists(ctx context.Context, key string) (bool, error)
	Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements the index-document side of the sync and reindex
// usecases.
type Repo struct {
	store store
}

// New creates a docket repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// --- dockets ---

// UpsertDocket creates or replaces a docket document. Returns true if
// created.
func (r *Repo) UpsertDocket(ctx context.Context, d *domdocket.Docket) (bool, error) {
	key := DocketKey(d.ID)
	data, err := json.Marshal(d)
	if err != nil {
		return false, fmt.Errorf("marshal docket %d: %w", d.ID, err)
	}

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return false, fmt.Errorf("json.set %s: %w", key, err)
	}
	return !exists, nil
}

// GetDocket returns an indexed docket by id.
func (r *Repo) GetDocket(ctx context.Context, id int64) (domdocket.Docket, error) {
	key := DocketKey(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domdocket.Docket{}, domain.ErrDocketNotFound
		}
		return domdocket.Docket{}, fmt.Errorf("json.get %s: %w", key, err)
	}

	var docs []domdocket.Docket
	if err := json.Unmarshal(raw, &docs); err != nil {
		return domdocket.Docket{}, fmt.Errorf("unmarshal docket %d: %w", id, err)
	}
	if len(docs) == 0 {
		return domdocket.Docket{}, domain.ErrDocketNotFound
	}
	return docs[0], nil
}

// DocketExists probes for an indexed docket.
func (r *Repo) DocketExists(ctx context.Context, id int64) (bool, error) {
	exists, err := r.store.Exists(ctx, DocketKey(id))
	if err != nil {
		return false, fmt.Errorf("check exists docket %d: %w", id, err)
	}
	return exists, nil
}

// PatchDocket merges the given fields into the docket document
// (JSON.GET, merge, JSON.SET). Missing document is domain.ErrDocketNotFound.
func (r *Repo) PatchDocket(ctx context.Context, id int64, fields map[string]any) error {
	if err := r.patch(ctx, DocketKey(id), fields); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ErrDocketNotFound
		}
		return err
	}
	return nil
}

// DeleteDocket removes the docket document. Absent documents are a
// no-op: deletes must be idempotent.
func (r *Repo) DeleteDocket(ctx context.Context, id int64) error {
	key := DocketKey(id)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// DocketIDsByJudge returns ids of dockets whose assigned or referred
// judge is the given judge id.
func (r *Repo) DocketIDsByJudge(ctx context.Context, judgeID int64) ([]int64, error) {
	q := fmt.Sprintf("(@assigned_to_id:[%d %d] | @referred_to_id:[%d %d])",
		judgeID, judgeID, judgeID, judgeID)
	keys, err := r.searchKeys(ctx, DocketIndex(), q)
	if err != nil {
		return nil, fmt.Errorf("dockets by judge %d: %w", judgeID, err)
	}
	return keysToIDs(keys, docketKeyPrefix()), nil
}

// --- filings ---

// UpsertFiling creates or replaces a filing document. Returns true if
// created.
func (r *Repo) UpsertFiling(ctx context.Context, f *domfiling.Filing) (bool, error) {
	key := FilingKey(f.ID)
	data, err := json.Marshal(f)
	if err != nil {
		return false, fmt.Errorf("marshal filing %d: %w", f.ID, err)
	}

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return false, fmt.Errorf("json.set %s: %w", key, err)
	}
	return !exists, nil
}

// UpsertFilings writes a batch of filing documents in one pipeline.
func (r *Repo) UpsertFilings(ctx context.Context, filings []domfiling.Filing) error {
	if len(filings) == 0 {
		return nil
	}
	items := make([]db.JSONSetItem, 0, len(filings))
	for i := range filings {
		f := &filings[i]
		data, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("marshal filing %d: %w", f.ID, err)
		}
		items = append(items, db.JSONSetItem{Key: FilingKey(f.ID), Path: "$", Data: data})
	}
	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("bulk filing upsert: %w", err)
	}
	return nil
}

// GetFiling returns an indexed filing by id.
func (r *Repo) GetFiling(ctx context.Context, id int64) (domfiling.Filing, error) {
	key := FilingKey(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domfiling.Filing{}, domain.ErrFilingNotFound
		}
		return domfiling.Filing{}, fmt.Errorf("json.get %s: %w", key, err)
	}

	var docs []domfiling.Filing
	if err := json.Unmarshal(raw, &docs); err != nil {
		return domfiling.Filing{}, fmt.Errorf("unmarshal filing %d: %w", id, err)
	}
	if len(docs) == 0 {
		return domfiling.Filing{}, domain.ErrFilingNotFound
	}
	return docs[0], nil
}

// PatchFiling merges the given fields into one filing document.
func (r *Repo) PatchFiling(ctx context.Context, id int64, fields map[string]any) error {
	if err := r.patch(ctx, FilingKey(id), fields); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ErrFilingNotFound
		}
		return err
	}
	return nil
}

// DeleteFiling removes one filing document, idempotently.
func (r *Repo) DeleteFiling(ctx context.Context, id int64) error {
	key := FilingKey(id)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// FilingIDsByDocket returns the ids of every indexed filing of a docket.
func (r *Repo) FilingIDsByDocket(ctx context.Context, docketID int64) ([]int64, error) {
	keys, err := r.searchKeys(ctx, FilingIndex(), docketEqQuery(docketID))
	if err != nil {
		return nil, fmt.Errorf("filings of docket %d: %w", docketID, err)
	}
	return keysToIDs(keys, filingKeyPrefix()), nil
}

// CountFilingsByDocket returns the docket's total indexed filing count.
func (r *Repo) CountFilingsByDocket(ctx context.Context, docketID int64) (int, error) {
	n, err := r.store.SearchCount(ctx, FilingIndex(), docketEqQuery(docketID))
	if err != nil {
		return 0, fmt.Errorf("count filings of docket %d: %w", docketID, err)
	}
	return n, nil
}

// PatchFilingsByDocket merges the same field set into every filing of
// the docket in one logical pass: page the documents out, merge in
// memory, write back pipelined. Safe to retry in full.
func (r *Repo) PatchFilingsByDocket(ctx context.Context, docketID int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	offset := 0
	for {
		res, err := r.store.Search(ctx, &db.TextQuery{
			IndexName:    FilingIndex(),
			Query:        docketEqQuery(docketID),
			Offset:       offset,
			Limit:        pageSize,
			ReturnFields: []string{"$"},
		})
		if err != nil {
			return fmt.Errorf("propagate to docket %d filings: %w", docketID, err)
		}
		if res == nil || len(res.Entries) == 0 {
			return nil
		}

		items := make([]db.JSONSetItem, 0, len(res.Entries))
		for _, entry := range res.Entries {
			var doc map[string]any
			if err := json.Unmarshal([]byte(entry.Fields["$"]), &doc); err != nil {
				return fmt.Errorf("unmarshal %s for propagation: %w", entry.Key, err)
			}
			mergeFields(doc, fields)
			data, err := json.Marshal(doc)
			if err != nil {
				return fmt.Errorf("marshal %s for propagation: %w", entry.Key, err)
			}
			items = append(items, db.JSONSetItem{Key: entry.Key, Path: "$", Data: data})
		}

		if err := r.store.JSONSetMulti(ctx, items); err != nil {
			return fmt.Errorf("propagate to docket %d filings: %w", docketID, err)
		}

		if len(res.Entries) < pageSize {
			return nil
		}
		offset += pageSize
	}
}

// DeleteFilingsByDocket removes every filing of a docket, idempotently.
func (r *Repo) DeleteFilingsByDocket(ctx context.Context, docketID int64) error {
	keys, err := r.searchKeys(ctx, FilingIndex(), docketEqQuery(docketID))
	if err != nil {
		return fmt.Errorf("delete filings of docket %d: %w", docketID, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.store.DelMulti(ctx, keys); err != nil {
		return fmt.Errorf("delete filings of docket %d: %w", docketID, err)
	}
	return nil
}

// --- internals ---

func (r *Repo) patch(ctx context.Context, key string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return db.ErrKeyNotFound
		}
		return fmt.Errorf("json.get %s: %w", key, err)
	}

	var docs []map[string]any
	if err := json.Unmarshal(raw, &docs); err != nil {
		return fmt.Errorf("unmarshal for patch: %w", err)
	}
	if len(docs) == 0 {
		return db.ErrKeyNotFound
	}

	current := docs[0]
	mergeFields(current, fields)

	data, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("marshal patched doc: %w", err)
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// mergeFields merges a patch into the current JSON map in-place. A nil
// value removes the attribute (bankruptcy clears propagate as null).
func mergeFields(current map[string]any, fields map[string]any) {
	for k, v := range fields {
		if v == nil {
			delete(current, k)
		} else {
			current[k] = v
		}
	}
}

// searchKeys walks all result pages of a query and returns the keys.
func (r *Repo) searchKeys(ctx context.Context, index, query string) ([]string, error) {
	var keys []string
	offset := 0
	for {
		res, err := r.store.Search(ctx, &db.TextQuery{
			IndexName: index,
			Query:     query,
			Offset:    offset,
			Limit:     pageSize,
			// no RETURN: key-only parsing still needs the doc stride,
			// so request the cheap id attribute
			ReturnFields: []string{"id"},
		})
		if err != nil {
			return nil, err
		}
		if res == nil || len(res.Entries) == 0 {
			return keys, nil
		}
		for _, e := range res.Entries {
			keys = append(keys, e.Key)
		}
		if len(res.Entries) < pageSize {
			return keys, nil
		}
		offset += pageSize
	}
}

func docketEqQuery(docketID int64) string {
	return fmt.Sprintf("@docket_id:[%d %d]", docketID, docketID)
}

// DocketKey is the storage key of a docket document.
func DocketKey(id int64) string {
	return fmt.Sprintf("%s%d", docketKeyPrefix(), id)
}

// FilingKey is the storage key of a filing document.
func FilingKey(id int64) string {
	return fmt.Sprintf("%s%d", filingKeyPrefix(), id)
}

// DocketIndex is the FT index name over docket documents.
func DocketIndex() string { return domain.KeyPrefix + "docket:idx" }

// FilingIndex is the FT index name over filing documents.
func FilingIndex() string { return domain.KeyPrefix + "filing:idx" }

func docketKeyPrefix() string { return domain.KeyPrefix + "docket:" }
func filingKeyPrefix() string { return domain.KeyPrefix + "filing:" }

func keysToIDs(keys []string, prefix string) []int64 {
	ids := make([]int64, 0, len(keys))
	for _, k := range keys {
		id, err := strconv.ParseInt(strings.TrimPrefix(k, prefix), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
