package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/apierr"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/transport"
)

const DefaultFeedLimit = 20

type FeedAPI struct{ t Doer }

type FeedQuery struct {
	Limit       int
	Offset      int
	Tags        []string
	ContentType domain.ContentType
}

func (f *FeedAPI) List(ctx context.Context, q FeedQuery) (*FeedResponse, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultFeedLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	vals := url.Values{"limit": {strconv.Itoa(q.Limit)}, "offset": {strconv.Itoa(q.Offset)}}
	if len(q.Tags) > 0 {
		vals.Set("tags", strings.Join(q.Tags, ","))
	}
	if q.ContentType != "" {
		vals.Set("contentType", string(q.ContentType))
	}
	var out FeedResponse
	if err := f.t.Do(ctx, transport.Request{Method: http.MethodGet, Path: "/feed", Query: vals}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type NewResource struct {
	Title       string
	ContentType domain.ContentType
	Content     string
	Tags        []string

	// Optional attachment.
	Filename string
	Media    io.Reader
}

func (f *FeedAPI) Create(ctx context.Context, in NewResource) (*Response[ResourcePayload], error) {
	fields := map[string]string{
		"title":       in.Title,
		"contentType": string(in.ContentType),
		"content":     in.Content,
		"tags":        strings.Join(in.Tags, ","),
	}
	body, contentType, err := multipartBody(fields, "media", filepath.Base(in.Filename), in.Media)
	if err != nil {
		return nil, &apierr.Error{Kind: apierr.KindRequest, Message: transport.MsgRequest, Err: err}
	}
	var out Response[ResourcePayload]
	err = f.t.Do(ctx, transport.Request{
		Method:      http.MethodPost,
		Path:        "/feed/resources",
		RawBody:     body,
		ContentType: contentType,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *FeedAPI) Like(ctx context.Context, resourceID string) (*LikePayload, error) {
	return f.like(ctx, http.MethodPost, resourceID)
}

func (f *FeedAPI) Unlike(ctx context.Context, resourceID string) (*LikePayload, error) {
	return f.like(ctx, http.MethodDelete, resourceID)
}

func (f *FeedAPI) like(ctx context.Context, method, resourceID string) (*LikePayload, error) {
	var out Response[LikePayload]
	err := f.t.Do(ctx, transport.Request{
		Method: method,
		Path:   "/feed/resources/" + escape(resourceID) + "/like",
		Route:  "/feed/resources/:id/like",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Data, nil
}
