package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/platform/apierr"
	"github.com/nicolasllerenas/hackathon-tecsup/internal/transport"
)

type UsersAPI struct{ t Doer }

func (u *UsersAPI) GetMe(ctx context.Context) (*MeResponse, error) {
	var out MeResponse
	if err := u.t.Do(ctx, transport.Request{Method: http.MethodGet, Path: "/users/me"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *UsersAPI) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) (*Response[UserPayload], error) {
	if patch.Bio != nil {
		if err := domain.ValidateBio(*patch.Bio); err != nil {
			return nil, apierr.Validation(err.Error(), err)
		}
	}
	var out Response[UserPayload]
	err := u.t.Do(ctx, transport.Request{Method: http.MethodPatch, Path: "/users/me", Body: patch}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadProfileImage sends the image as the "image" form field.
func (u *UsersAPI) UploadProfileImage(ctx context.Context, filename string, image io.Reader) (*Response[ImagePayload], error) {
	body, contentType, err := multipartBody(map[string]string{}, "image", filepath.Base(filename), image)
	if err != nil {
		return nil, &apierr.Error{Kind: apierr.KindRequest, Message: transport.MsgRequest, Err: err}
	}
	var out Response[ImagePayload]
	err = u.t.Do(ctx, transport.Request{
		Method:      http.MethodPost,
		Path:        "/users/me/profile-image",
		RawBody:     body,
		ContentType: contentType,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *UsersAPI) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	var out domain.User
	err := u.t.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/users/" + escape(userID),
		Route:  "/users/:id",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *UsersAPI) AddGrades(ctx context.Context, grades []domain.Grade) (*Response[GradesPayload], error) {
	var out Response[GradesPayload]
	err := u.t.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/users/me/grades",
		Body:   map[string]any{"grades": grades},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// multipartBody buffers a form with the given text fields and one file part.
func multipartBody(fields map[string]string, fileField, filename string, file io.Reader) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if file != nil {
		part, err := w.CreateFormFile(fileField, filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
