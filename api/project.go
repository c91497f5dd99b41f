package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jrsteele09/imvestor-client/dto"
	"github.com/jrsteele09/imvestor-client/internal/errors"
	"github.com/rs/zerolog/log"
)

// PartialError reports a project that was created but whose file upload
// failed. The project is not rolled back.
type PartialError struct {
	Project dto.ProjectResponse
	Err     error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("project %d created but file upload failed: %v", e.Project.ID, e.Err)
}

func (e *PartialError) Unwrap() error {
	return e.Err
}

// CreateProject creates a company owned by the signed-in entrepreneur
func (s *Service) CreateProject(ctx context.Context, req dto.ProjectRequest) (dto.ProjectResponse, error) {
	var out dto.ProjectResponse
	if err := s.client.Do(ctx, http.MethodPost, PathProject, req, &out); err != nil {
		return dto.ProjectResponse{}, errors.Wrapf(err, "create project")
	}
	return out, nil
}

// UploadProjectFile attaches file to an existing project
func (s *Service) UploadProjectFile(ctx context.Context, projectID int, file dto.FilePayload) error {
	req := dto.UploadFileRequest{ProjectID: projectID, FilePayload: file}
	if err := s.client.Do(ctx, http.MethodPost, PathProjectUploadFile, req, nil); err != nil {
		return errors.Wrapf(err, "upload file to project %d", projectID)
	}
	return nil
}

// CreateProjectWithFile creates the project and then attaches file to it.
// If the upload fails the created project is returned inside a *PartialError.
func (s *Service) CreateProjectWithFile(ctx context.Context, req dto.ProjectRequest, file dto.FilePayload) (dto.ProjectResponse, error) {
	project, err := s.CreateProject(ctx, req)
	if err != nil {
		return dto.ProjectResponse{}, err
	}

	if err := s.UploadProjectFile(ctx, project.ID, file); err != nil {
		log.Warn().Err(err).Int("project", project.ID).Msg("Project created without its file")
		return project, &PartialError{Project: project, Err: err}
	}
	return project, nil
}

// EncodeFile reads path into an inline upload payload. The MIME type comes
// from the extension, falling back to content sniffing.
func EncodeFile(path string) (dto.FilePayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dto.FilePayload{}, errors.Wrapf(err, "read %s", path)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	return dto.FilePayload{
		Name:   filepath.Base(path),
		Type:   mimeType,
		Size:   strconv.Itoa(len(data)),
		Base64: base64.StdEncoding.EncodeToString(data),
	}, nil
}
