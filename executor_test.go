package sfs_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/sagarc03/sfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClient is a mock implementation of sfs.Client
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Put(ctx context.Context, target sfs.Target, localPath string) (*sfs.Response, error) {
	args := m.Called(ctx, target, localPath)
	return responseArg(args)
}

func (m *MockClient) Get(ctx context.Context, target sfs.Target, localPath string) (*sfs.Response, error) {
	args := m.Called(ctx, target, localPath)
	return responseArg(args)
}

func (m *MockClient) Delete(ctx context.Context, target sfs.Target) (*sfs.Response, error) {
	args := m.Called(ctx, target)
	return responseArg(args)
}

func (m *MockClient) ListFiles(ctx context.Context, target sfs.Target) (*sfs.Response, error) {
	args := m.Called(ctx, target)
	return responseArg(args)
}

func (m *MockClient) ListContexts(ctx context.Context) (*sfs.Response, error) {
	args := m.Called(ctx)
	return responseArg(args)
}

func responseArg(args mock.Arguments) (*sfs.Response, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sfs.Response), args.Error(1)
}

var testTarget = sfs.Target{Org: "acme", Context: "backups", Name: "db"}

func TestExecutor_Put(t *testing.T) {
	client := new(MockClient)
	client.On("Put", mock.Anything, testTarget, "/data").
		Return(&sfs.Response{StatusCode: http.StatusCreated, Body: []byte(`{"name":"db.zip"}`)}, nil)

	result, err := sfs.NewExecutor(client, nil).Execute(context.Background(), sfs.Invocation{
		Operation: sfs.OpPut,
		Target:    testTarget,
		LocalPath: "/data",
	})

	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, http.StatusCreated, result.Code)
	assert.JSONEq(t, `{"name":"db.zip"}`, string(result.Response))
	client.AssertExpectations(t)
}

func TestExecutor_Get(t *testing.T) {
	client := new(MockClient)
	client.On("Get", mock.Anything, testTarget, "/downloads").
		Return(&sfs.Response{StatusCode: http.StatusOK, Body: []byte("zip bytes")}, nil)

	result, err := sfs.NewExecutor(client, nil).Execute(context.Background(), sfs.Invocation{
		Operation: sfs.OpGet,
		Target:    testTarget,
		LocalPath: "/downloads",
	})

	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, http.StatusOK, result.Code)
	assert.Nil(t, result.Response)
	client.AssertExpectations(t)
}

func TestExecutor_Delete(t *testing.T) {
	t.Run("json body", func(t *testing.T) {
		client := new(MockClient)
		client.On("Delete", mock.Anything, testTarget).
			Return(&sfs.Response{StatusCode: http.StatusOK, Body: []byte(`{"deleted":true}`)}, nil)

		result, err := sfs.NewExecutor(client, nil).Execute(context.Background(), sfs.Invocation{
			Operation: sfs.OpDelete,
			Target:    testTarget,
		})

		require.NoError(t, err)
		assert.True(t, result.Changed)
		assert.JSONEq(t, `{"deleted":true}`, string(result.Response))
	})

	t.Run("empty body is null", func(t *testing.T) {
		client := new(MockClient)
		client.On("Delete", mock.Anything, testTarget).
			Return(&sfs.Response{StatusCode: http.StatusNoContent}, nil)

		result, err := sfs.NewExecutor(client, nil).Execute(context.Background(), sfs.Invocation{
			Operation: sfs.OpDelete,
			Target:    testTarget,
		})

		require.NoError(t, err)
		assert.Equal(t, "null", string(result.Response))
	})

	t.Run("non json success body", func(t *testing.T) {
		client := new(MockClient)
		client.On("Delete", mock.Anything, testTarget).
			Return(&sfs.Response{StatusCode: http.StatusOK, Body: []byte("deleted"), URL: "https://sfs.local/files/acme/backups/db"}, nil)

		_, err := sfs.NewExecutor(client, nil).Execute(context.Background(), sfs.Invocation{
			Operation: sfs.OpDelete,
			Target:    testTarget,
		})

		require.ErrorIs(t, err, sfs.ErrInvalidResponse)
		f := sfs.FailureFrom(err)
		assert.Equal(t, "deleted", f.Response)
		assert.Equal(t, http.StatusOK, f.Code)
	})
}

func TestExecutor_ListFiles(t *testing.T) {
	body := `{"files":[{"name":"a","date":10}]}`
	client := new(MockClient)
	client.On("ListFiles", mock.Anything, testTarget).
		Return(&sfs.Response{StatusCode: http.StatusOK, Body: []byte(body)}, nil)

	result, err := sfs.NewExecutor(client, nil).Execute(context.Background(), sfs.Invocation{
		Operation: sfs.OpListFiles,
		Target:    testTarget,
	})

	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.JSONEq(t, body, string(result.Listing))
	assert.Nil(t, result.FileMostRecent)
}

func TestExecutor_FileMostRecent(t *testing.T) {
	t.Run("selects greatest date", func(t *testing.T) {
		client := new(MockClient)
		client.On("ListFiles", mock.Anything, testTarget).
			Return(&sfs.Response{
				StatusCode: http.StatusOK,
				Body:       []byte(`{"files":[{"name":"a","date":10},{"name":"b","date":30},{"name":"c","date":20}]}`),
			}, nil)

		result, err := sfs.NewExecutor(client, nil).Execute(context.Background(), sfs.Invocation{
			Operation: sfs.OpFileMostRecent,
			Target:    testTarget,
		})

		require.NoError(t, err)
		assert.False(t, result.Changed)
		assert.Equal(t, http.StatusOK, result.Code)
		assert.JSONEq(t, `{"name":"b","date":30}`, string(result.FileMostRecent))
		assert.Nil(t, result.Listing)
	})

	t.Run("empty listing fails", func(t *testing.T) {
		client := new(MockClient)
		client.On("ListFiles", mock.Anything, testTarget).
			Return(&sfs.Response{StatusCode: http.StatusOK, Body: []byte(`{"files":[]}`)}, nil)

		_, err := sfs.NewExecutor(client, nil).Execute(context.Background(), sfs.Invocation{
			Operation: sfs.OpFileMostRecent,
			Target:    testTarget,
		})

		assert.ErrorIs(t, err, sfs.ErrNoFiles)
	})

	t.Run("invalid listing fails", func(t *testing.T) {
		client := new(MockClient)
		client.On("ListFiles", mock.Anything, testTarget).
			Return(&sfs.Response{StatusCode: http.StatusOK, Body: []byte(`oops`)}, nil)

		_, err := sfs.NewExecutor(client, nil).Execute(context.Background(), sfs.Invocation{
			Operation: sfs.OpFileMostRecent,
			Target:    testTarget,
		})

		assert.ErrorIs(t, err, sfs.ErrInvalidResponse)
	})
}

func TestExecutor_ListContexts(t *testing.T) {
	client := new(MockClient)
	client.On("ListContexts", mock.Anything).
		Return(&sfs.Response{StatusCode: http.StatusOK, Body: []byte(`{"contexts":["a","b"]}`)}, nil)

	result, err := sfs.NewExecutor(client, nil).Execute(context.Background(), sfs.Invocation{
		Operation: sfs.OpListContexts,
		Target:    sfs.Target{Org: "acme"},
	})

	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.JSONEq(t, `{"contexts":["a","b"]}`, string(result.Listing))
	client.AssertNotCalled(t, "ListFiles", mock.Anything, mock.Anything)
}

func TestExecutor_PropagatesErrors(t *testing.T) {
	apiErr := &sfs.APIError{StatusCode: http.StatusForbidden, Body: "denied", URL: "https://sfs.local/contexts"}

	client := new(MockClient)
	client.On("ListContexts", mock.Anything).Return(nil, apiErr)

	_, err := sfs.NewExecutor(client, nil).Execute(context.Background(), sfs.Invocation{
		Operation: sfs.OpListContexts,
	})

	require.Error(t, err)
	var got *sfs.APIError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, "denied", got.Body)
	assert.ErrorIs(t, err, sfs.ErrForbidden)
}

func TestExecutor_InvalidOperation(t *testing.T) {
	client := new(MockClient)

	_, err := sfs.NewExecutor(client, nil).Execute(context.Background(), sfs.Invocation{
		Operation: "rename",
	})

	assert.ErrorIs(t, err, sfs.ErrInvalidOperation)
	client.AssertExpectations(t)
}
