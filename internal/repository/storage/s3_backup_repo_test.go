package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dafibh/arthaku/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectAPI struct {
	objects       map[string][]byte
	bucketExists  bool
	headErr       error
	createdBucket bool
	getErr        error
}

func newFakeObjectAPI() *fakeObjectAPI {
	return &fakeObjectAPI{objects: make(map[string][]byte), bucketExists: true}
}

func (f *fakeObjectAPI) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	if !f.bucketExists {
		return nil, &types.NotFound{}
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeObjectAPI) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.createdBucket = true
	f.bucketExists = true
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeObjectAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3BackupRepository_PutAndGet(t *testing.T) {
	api := newFakeObjectAPI()
	repo := NewS3BackupRepositoryWithClient(api, "arthaku")
	ctx := context.Background()

	handle, err := repo.Put(ctx, []byte(`{"payload":"e30="}`))
	require.NoError(t, err)

	_, err = uuid.Parse(handle)
	require.NoError(t, err)
	assert.Contains(t, api.objects, "backups/"+handle+".json")

	data, err := repo.Get(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, `{"payload":"e30="}`, string(data))
}

func TestS3BackupRepository_GetUnknownHandle(t *testing.T) {
	repo := NewS3BackupRepositoryWithClient(newFakeObjectAPI(), "arthaku")

	_, err := repo.Get(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrBackupNotFound)
}

func TestS3BackupRepository_GetMalformedHandle(t *testing.T) {
	repo := NewS3BackupRepositoryWithClient(newFakeObjectAPI(), "arthaku")

	_, err := repo.Get(context.Background(), "../secrets")
	assert.ErrorIs(t, err, domain.ErrBackupNotFound)
}

func TestS3BackupRepository_GetTransportError(t *testing.T) {
	api := newFakeObjectAPI()
	api.getErr = errors.New("connection reset")
	repo := NewS3BackupRepositoryWithClient(api, "arthaku")

	_, err := repo.Get(context.Background(), uuid.New().String())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrBackupNotFound)
}

func TestS3BackupRepository_EnsureBucket(t *testing.T) {
	t.Run("creates missing bucket", func(t *testing.T) {
		api := newFakeObjectAPI()
		api.bucketExists = false
		repo := NewS3BackupRepositoryWithClient(api, "arthaku")

		require.NoError(t, repo.ensureBucket(context.Background()))
		assert.True(t, api.createdBucket)
	})

	t.Run("existing bucket is left alone", func(t *testing.T) {
		api := newFakeObjectAPI()
		repo := NewS3BackupRepositoryWithClient(api, "arthaku")

		require.NoError(t, repo.ensureBucket(context.Background()))
		assert.False(t, api.createdBucket)
	})

	t.Run("permission error is returned", func(t *testing.T) {
		api := newFakeObjectAPI()
		api.headErr = errors.New("forbidden")
		repo := NewS3BackupRepositoryWithClient(api, "arthaku")

		assert.Error(t, repo.ensureBucket(context.Background()))
		assert.False(t, api.createdBucket)
	})
}
