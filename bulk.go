// SPDX-License-Identifier: Apache-2.0

package esfake

import (
	"bufio"
	"bytes"
	"io"
	"time"

	"github.com/jozefcuryllo/es-fake/jsonshim"
	"github.com/pkg/errors"
)

// BulkItemResult is the outcome of a single action/payload pair within a
// bulk request.
type BulkItemResult struct {
	Action  string // "index" or "create"
	Index   string
	ID      string
	Status  int
	Result  string
	Version int64
	SeqNo   int64
	Err     *APIError
}

// BulkResult is the outcome of an entire bulk request.
type BulkResult struct {
	Errors bool
	TookMS int64
	Items  []BulkItemResult
}

type bulkAction struct {
	Index *bulkActionMeta `json:"index"`
	Create *bulkActionMeta `json:"create"`
}

type bulkActionMeta struct {
	Index string `json:"_index"`
	ID    string `json:"_id"`
}

// ProcessBulk reads a newline-delimited stream of alternating action/payload
// lines per §4.6, applying each item against registry. defaultIndex, if
// non-empty, is adopted by any action line that omits `_index` (as supplied
// via the `_bulk` URL path). A malformed action line terminates processing
// and is surfaced as a single top-level error; per-item failures (mapping
// conflicts, bad document JSON) do not abort the batch.
func ProcessBulk(registry *Registry, defaultIndex string, body io.Reader) (*BulkResult, error) {
	start := time.Now()
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	result := &BulkResult{}

	for scanner.Scan() {
		actionLine := bytes.TrimSpace(scanner.Bytes())
		if len(actionLine) == 0 {
			continue
		}
		actionLine = append([]byte(nil), actionLine...)

		var action bulkAction
		if err := jsonshim.Unmarshal(actionLine, &action); err != nil {
			return nil, NewAPIError(ErrParseException, "malformed bulk action line: %s", err)
		}

		actionName := "index"
		meta := action.Index
		if meta == nil && action.Create != nil {
			actionName = "create"
			meta = action.Create
		}
		if meta == nil {
			return nil, NewAPIError(ErrParseException, "bulk action line must contain an [index] or [create] action")
		}

		hasPayload := scanner.Scan()
		if !hasPayload {
			return nil, NewAPIError(ErrParseException, "bulk request ended without a document for the final action line")
		}
		payloadLine := append([]byte(nil), bytes.TrimSpace(scanner.Bytes())...)

		indexName := meta.Index
		if indexName == "" {
			indexName = defaultIndex
		}
		if indexName == "" {
			result.Errors = true
			result.Items = append(result.Items, BulkItemResult{
				Action: actionName,
				ID:     meta.ID,
				Status: ErrActionRequestValidationFailure.Status(),
				Err:    NewAPIError(ErrActionRequestValidationFailure, "index is missing for bulk action"),
			})
			continue
		}

		item := BulkItemResult{Action: actionName, Index: indexName, ID: meta.ID}

		var source map[string]interface{}
		if err := jsonshim.Unmarshal(payloadLine, &source); err != nil {
			item.Status = ErrParseException.Status()
			item.Err = NewAPIError(ErrParseException, "failed to parse document body: %s", err)
			result.Errors = true
			result.Items = append(result.Items, item)
			continue
		}

		ix := registry.GetOrCreate(indexName)
		ires, err := ix.IndexDocument(meta.ID, source)
		if err != nil {
			item.Status = AsAPIError(err).Status()
			item.Err = AsAPIError(err)
			result.Errors = true
			result.Items = append(result.Items, item)
			continue
		}

		item.ID = ires.ID
		item.Version = ires.Version
		item.SeqNo = ires.SeqNo
		item.Result = ires.Result
		if ires.Result == "created" {
			item.Status = 201
		} else {
			item.Status = 200
		}
		result.Items = append(result.Items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read bulk request body")
	}

	result.TookMS = time.Since(start).Milliseconds()
	return result, nil
}
