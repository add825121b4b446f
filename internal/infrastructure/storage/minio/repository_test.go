package minio

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/turtacn/ChemSource/internal/domain/supplier"
	"github.com/turtacn/ChemSource/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/ChemSource/pkg/errors"
)

type RepositoryTestSuite struct {
	suite.Suite
	api     *MockMinIOAPI
	client  *MinIOClient
	archive *ResultArchive
	ctx     context.Context
}

func (s *RepositoryTestSuite) SetupTest() {
	s.api = new(MockMinIOAPI)
	s.client = &MinIOClient{client: s.api, config: &MinIOConfig{Bucket: "results", PresignExpiry: time.Hour}, logger: logging.NewNopLogger()}
	s.archive = NewResultArchive(s.client, nil)
	s.ctx = context.Background()
}

func objectCh(objs ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(objs))
	for _, o := range objs {
		ch <- o
	}
	close(ch)
	return ch
}

func (s *RepositoryTestSuite) TestObjectKey() {
	s.Equal("results/67-64-1/run-1.json", ObjectKey("67-64-1", "run-1"))
	s.Equal("results/foo_bar_baz/r_1.json", ObjectKey("foo/bar baz", "r/1"))
}

func (s *RepositoryTestSuite) TestDeliver_UploadsJSON() {
	rs := &supplier.ResultSet{
		RunID:        "run-1",
		ChemicalName: "Acetone",
		CAS:          "67-64-1",
		Suppliers:    []supplier.ScoredSupplier{{SupplierName: "Alpha", Domain: "alpha.de"}},
	}
	var body []byte
	s.api.On("PutObject", mock.Anything, "results", "results/67-64-1/run-1.json", mock.Anything, mock.AnythingOfType("int64"),
		mock.MatchedBy(func(o minio.PutObjectOptions) bool {
			return o.ContentType == "application/json" &&
				o.UserMetadata["run-id"] == "run-1" &&
				o.UserMetadata["suppliers"] == "1" &&
				o.UserTags["cas"] == "67-64-1"
		})).
		Run(func(args mock.Arguments) {
			body, _ = io.ReadAll(args.Get(3).(io.Reader))
			s.Equal(int64(len(body)), args.Get(4).(int64))
		}).
		Return(minio.UploadInfo{Bucket: "results", Key: "results/67-64-1/run-1.json"}, nil).Once()

	s.Equal("minio", s.archive.Name())
	s.Require().NoError(s.archive.Deliver(s.ctx, rs))
	s.api.AssertExpectations(s.T())

	var decoded supplier.ResultSet
	s.Require().NoError(json.Unmarshal(body, &decoded))
	s.Equal("run-1", decoded.RunID)
	s.Len(decoded.Suppliers, 1)
}

func (s *RepositoryTestSuite) TestDeliver_Rejections() {
	s.ErrorIs(s.archive.Deliver(s.ctx, &supplier.ResultSet{CAS: "67-64-1"}), ErrInvalidRequest)
	s.ErrorIs(s.archive.Deliver(s.ctx, nil), ErrInvalidRequest)

	s.api.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("SlowDown")).Once()
	err := s.archive.Deliver(s.ctx, &supplier.ResultSet{RunID: "r", CAS: "67-64-1"})
	s.True(apperrors.IsCode(err, apperrors.ErrCodeStorage))

	s.Require().NoError(s.client.Close())
	s.ErrorIs(s.archive.Deliver(s.ctx, &supplier.ResultSet{RunID: "r", CAS: "67-64-1"}), ErrMinIOClientClosed)
}

func (s *RepositoryTestSuite) TestExists() {
	s.api.On("StatObject", mock.Anything, "results", "results/67-64-1/a.json", mock.Anything).
		Return(minio.ObjectInfo{Key: "results/67-64-1/a.json"}, nil).Once()
	s.api.On("StatObject", mock.Anything, "results", "results/67-64-1/b.json", mock.Anything).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"}).Once()
	s.api.On("StatObject", mock.Anything, "results", "results/67-64-1/c.json", mock.Anything).
		Return(minio.ObjectInfo{}, errors.New("boom")).Once()

	ok, err := s.archive.Exists(s.ctx, "67-64-1", "a")
	s.NoError(err)
	s.True(ok)

	ok, err = s.archive.Exists(s.ctx, "67-64-1", "b")
	s.NoError(err)
	s.False(ok)

	_, err = s.archive.Exists(s.ctx, "67-64-1", "c")
	s.True(apperrors.IsCode(err, apperrors.ErrCodeStorage))
}

func (s *RepositoryTestSuite) TestList_NewestFirstWithURLs() {
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	s.api.On("ListObjects", mock.Anything, "results", minio.ListObjectsOptions{Prefix: "results/67-64-1/", Recursive: true}).
		Return(objectCh(
			minio.ObjectInfo{Key: "results/67-64-1/old.json", Size: 10, LastModified: t0},
			minio.ObjectInfo{Key: "results/67-64-1/notes.txt", LastModified: t0.Add(3 * time.Hour)},
			minio.ObjectInfo{Key: "results/67-64-1/new.json", Size: 20, LastModified: t0.Add(2 * time.Hour)},
			minio.ObjectInfo{Key: "results/67-64-1/mid.json", Size: 15, LastModified: t0.Add(time.Hour)},
		)).Once()
	s.api.On("PresignedGetObject", mock.Anything, "results", "results/67-64-1/new.json", time.Hour, mock.Anything).
		Return(makeURL("http://minio/new"), nil)
	s.api.On("PresignedGetObject", mock.Anything, "results", "results/67-64-1/mid.json", time.Hour, mock.Anything).
		Return(nil, errors.New("clock skew"))

	got, err := s.archive.List(s.ctx, "67-64-1", 2)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("new", got[0].RunID)
	s.Equal("http://minio/new", got[0].URL)
	s.Equal(int64(20), got[0].Size)
	s.Equal("mid", got[1].RunID)
	s.Empty(got[1].URL)
}

func (s *RepositoryTestSuite) TestList_Errors() {
	_, err := s.archive.List(s.ctx, " ", 0)
	s.ErrorIs(err, ErrInvalidRequest)

	s.api.On("ListObjects", mock.Anything, "results", mock.Anything).
		Return(objectCh(minio.ObjectInfo{Err: errors.New("AccessDenied")})).Once()
	_, err = s.archive.List(s.ctx, "67-64-1", 0)
	s.True(apperrors.IsCode(err, apperrors.ErrCodeStorage))
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

//Personal.AI order the ending
