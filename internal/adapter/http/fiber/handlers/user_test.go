package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/mocks"
	"github.com/chargehub/chargehub-api/internal/ports"
)

func TestUserHandler_UpdateProfilePartial(t *testing.T) {
	var got ports.ProfileUpdate
	service := &mocks.MockUserService{
		UpdateProfileFunc: func(ctx context.Context, userID string, update ports.ProfileUpdate) (*domain.User, error) {
			got = update
			return &domain.User{ID: userID}, nil
		},
	}
	app := newTestApp("u-1", domain.UserRoleEVOwner, NewUserHandler(service, &mocks.MockFileService{}, newTestLogger()).RegisterRoutes)

	resp := doJSON(t, app, "PUT", "/api/v1/users/me", map[string]interface{}{"notify_by_email": false})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Nil(t, got.Name)
	require.NotNil(t, got.NotifyByEmail)
	assert.False(t, *got.NotifyByEmail)
}

func TestUserHandler_ChangePasswordValidation(t *testing.T) {
	app := newTestApp("u-1", domain.UserRoleEVOwner, NewUserHandler(&mocks.MockUserService{}, &mocks.MockFileService{}, newTestLogger()).RegisterRoutes)

	resp := doJSON(t, app, "PUT", "/api/v1/users/me/password", map[string]string{"current_password": "old", "new_password": "short"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, "PUT", "/api/v1/users/me/password", map[string]string{"current_password": "old", "new_password": "long-enough"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestUserHandler_Vehicles(t *testing.T) {
	var added *domain.Vehicle
	service := &mocks.MockUserService{
		AddVehicleFunc: func(ctx context.Context, ownerID string, vehicle *domain.Vehicle) error {
			vehicle.ID = "v-1"
			vehicle.OwnerID = ownerID
			added = vehicle
			return nil
		},
		DeleteVehicleFunc: func(ctx context.Context, ownerID, vehicleID string) error {
			return domain.ErrVehicleNotFound
		},
	}
	app := newTestApp("u-1", domain.UserRoleEVOwner, NewUserHandler(service, &mocks.MockFileService{}, newTestLogger()).RegisterRoutes)

	resp := doJSON(t, app, "POST", "/api/v1/users/me/vehicles", map[string]interface{}{
		"make": "Nissan", "model": "Leaf", "plate_number": "CAB-1234", "battery_kwh": 40,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "u-1", added.OwnerID)

	resp = doJSON(t, app, "POST", "/api/v1/users/me/vehicles", map[string]interface{}{"make": "Nissan"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "missing required fields: model, plate_number", body["message"])

	resp = doJSON(t, app, "DELETE", "/api/v1/users/me/vehicles/v-9", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUserHandler_AvatarUpload(t *testing.T) {
	var uploaded ports.UploadInput
	var attached string
	files := &mocks.MockFileService{
		UploadFunc: func(ctx context.Context, input ports.UploadInput) (*domain.File, error) {
			uploaded = input
			return &domain.File{ID: "f-1", OwnerID: input.OwnerID}, nil
		},
	}
	service := &mocks.MockUserService{
		SetProfileImageFunc: func(ctx context.Context, userID, fileID string) error {
			attached = fileID
			return nil
		},
	}
	app := newTestApp("u-1", domain.UserRoleEVOwner, NewUserHandler(service, files, newTestLogger()).RegisterRoutes)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "me.png")
	require.NoError(t, err)
	part.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/v1/users/me/avatar", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, "u-1", uploaded.OwnerID)
	assert.True(t, uploaded.Thumbnail)
	assert.Equal(t, "f-1", attached)
}
