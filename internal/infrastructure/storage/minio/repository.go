package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/turtacn/ChemSource/internal/domain/supplier"
	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemSource/pkg/errors"
)

// ResultsPrefix is the key prefix of archived result sets.
const ResultsPrefix = "results/"

const defaultListLimit = 20

var ErrInvalidRequest = errors.New(errors.ErrCodeValidation, "invalid request")

// ArchivedResult describes one stored result set.
type ArchivedResult struct {
	Key          string    `json:"key"`
	CAS          string    `json:"cas"`
	RunID        string    `json:"run_id"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	URL          string    `json:"url,omitempty"`
}

// ResultArchive stores every delivered result set as a JSON object under
// results/{cas}/{run_id}.json.
type ResultArchive struct {
	client *MinIOClient
	logger logging.Logger
}

func NewResultArchive(client *MinIOClient, log logging.Logger) *ResultArchive {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ResultArchive{client: client, logger: log}
}

func (a *ResultArchive) Name() string { return "minio" }

// ObjectKey returns the archive key for one run. Characters outside
// [A-Za-z0-9._-] are replaced so free-form identifiers stay a single path
// segment.
func ObjectKey(cas, runID string) string {
	return casPrefix(cas) + sanitizeSegment(runID) + ".json"
}

func casPrefix(cas string) string {
	return ResultsPrefix + sanitizeSegment(cas) + "/"
}

func sanitizeSegment(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

// Deliver uploads rs. Result sets without a run id are rejected.
func (a *ResultArchive) Deliver(ctx context.Context, rs *supplier.ResultSet) error {
	if a.client.isClosed() {
		return ErrMinIOClientClosed
	}
	if rs == nil || rs.RunID == "" || rs.CAS == "" {
		return ErrInvalidRequest
	}
	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode result set")
	}

	key := ObjectKey(rs.CAS, rs.RunID)
	opts := minio.PutObjectOptions{
		ContentType: "application/json",
		UserMetadata: map[string]string{
			"chemical-name": rs.ChemicalName,
			"run-id":        rs.RunID,
			"suppliers":     strconv.Itoa(len(rs.Suppliers)),
		},
		UserTags: map[string]string{"cas": sanitizeSegment(rs.CAS)},
	}
	info, err := a.client.GetClient().PutObject(ctx, a.client.Bucket(), key, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "upload failed")
	}
	a.logger.Debug("result set archived",
		logging.String("bucket", info.Bucket),
		logging.String("key", key),
		logging.Int64("size", info.Size))
	return nil
}

// Exists reports whether a run has been archived.
func (a *ResultArchive) Exists(ctx context.Context, cas, runID string) (bool, error) {
	_, err := a.client.GetClient().StatObject(ctx, a.client.Bucket(), ObjectKey(cas, runID), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeStorage, "stat failed")
	}
	return true, nil
}

// List returns up to limit archived runs for cas, newest first, each with a
// presigned download URL.
func (a *ResultArchive) List(ctx context.Context, cas string, limit int) ([]ArchivedResult, error) {
	if strings.TrimSpace(cas) == "" {
		return nil, ErrInvalidRequest
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	prefix := casPrefix(cas)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ch := a.client.GetClient().ListObjects(ctx, a.client.Bucket(), minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var out []ArchivedResult
	for obj := range ch {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeStorage, "list failed")
		}
		if !strings.HasSuffix(obj.Key, ".json") {
			continue
		}
		out = append(out, ArchivedResult{
			Key:          obj.Key,
			CAS:          cas,
			RunID:        strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), ".json"),
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastModified.After(out[j].LastModified)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		u, err := a.client.GeneratePresignedGetURL(ctx, out[i].Key, 0)
		if err != nil {
			a.logger.Warn("presign failed", logging.String("key", out[i].Key), logging.Err(err))
			continue
		}
		out[i].URL = u
	}
	return out, nil
}

//Personal.AI order the ending
