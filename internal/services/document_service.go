package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yukikurage/taskflow-api/internal/events"
	"github.com/yukikurage/taskflow-api/internal/logger"
	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/repository"
	"github.com/yukikurage/taskflow-api/internal/storage"
	"gorm.io/gorm"
)

var (
	ErrFileRequired     = errors.New("file is required")
	ErrFileTooLarge     = errors.New("file exceeds the maximum upload size")
	ErrDocumentNotFound = errors.New("document not found")
)

const maxKeyAttempts = 10

// DocumentService stores task attachments and their metadata
type DocumentService struct {
	docRepo    repository.DocumentRepository
	store      storage.ObjectStore
	dispatcher *events.Dispatcher
	maxSize    int64
	now        func() time.Time
}

func NewDocumentService(docRepo repository.DocumentRepository, store storage.ObjectStore, dispatcher *events.Dispatcher, maxSize int64) *DocumentService {
	return &DocumentService{
		docRepo:    docRepo,
		store:      store,
		dispatcher: dispatcher,
		maxSize:    maxSize,
		now:        time.Now,
	}
}

// MaxSize returns the upload limit in bytes.
func (s *DocumentService) MaxSize() int64 {
	return s.maxSize
}

// UploadInput describes one uploaded file
type UploadInput struct {
	TaskID      string
	UploadedBy  string
	FileName    string
	Size        int64
	ContentType string
	Body        io.Reader
}

// UploadDocument stores the bytes, then the metadata row. When the row
// cannot be written the stored object is removed again.
func (s *DocumentService) UploadDocument(ctx context.Context, input UploadInput) (*models.TaskDocument, error) {
	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" || input.Body == nil {
		return nil, ErrFileRequired
	}
	if s.maxSize > 0 && input.Size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	// Two uploads in the same millisecond would share a key; the store
	// refuses to overwrite, so move on to the next millisecond.
	now := s.now().UTC()
	var key string
	for attempt := 0; ; attempt++ {
		key = storage.DocumentKey(input.TaskID, fileName, now)
		err := s.store.Put(ctx, key, input.Body, input.Size, input.ContentType)
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrObjectExists) || attempt+1 >= maxKeyAttempts {
			return nil, fmt.Errorf("failed to store document: %w", err)
		}
		now = now.Add(time.Millisecond)
	}

	doc := &models.TaskDocument{
		TaskID:     input.TaskID,
		FileName:   fileName,
		FilePath:   key,
		FileSize:   input.Size,
		UploadedBy: input.UploadedBy,
		CreatedAt:  now,
	}

	if err := s.docRepo.Create(doc); err != nil {
		if delErr := s.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			logger.FromContext(ctx).Error("Failed to remove orphaned document object",
				"key", key,
				"error", delErr,
			)
		}
		return nil, fmt.Errorf("failed to save document metadata: %w", err)
	}

	return doc, nil
}

// ListDocuments returns the documents of a task newest first
func (s *DocumentService) ListDocuments(taskID string) ([]models.TaskDocument, error) {
	docs, err := s.docRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// GetDocument finds a document belonging to taskID
func (s *DocumentService) GetDocument(taskID, documentID string) (*models.TaskDocument, error) {
	doc, err := s.docRepo.FindByID(documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	if doc.TaskID != taskID {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// Download opens the stored bytes under filePath. The caller closes the reader.
func (s *DocumentService) Download(ctx context.Context, filePath string) (io.ReadCloser, error) {
	rc, err := s.store.Get(ctx, filePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to download document: %w", err)
	}
	return rc, nil
}

// RemoveObjects deletes the stored bytes of docs.
func (s *DocumentService) RemoveObjects(ctx context.Context, docs []models.TaskDocument) error {
	var errs []error
	for _, doc := range docs {
		if err := s.store.Delete(ctx, doc.FilePath); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", doc.FilePath, err))
		}
	}
	return errors.Join(errs...)
}

// ScheduleObjectCleanup removes the stored bytes of docs in the background.
func (s *DocumentService) ScheduleObjectCleanup(taskID string, docs []models.TaskDocument) {
	if len(docs) == 0 {
		return
	}

	keys := make([]string, len(docs))
	for i, doc := range docs {
		keys[i] = doc.FilePath
	}

	s.dispatcher.Go("document_cleanup", map[string]interface{}{
		"task_id": taskID,
		"keys":    keys,
	}, func(ctx context.Context) error {
		return s.RemoveObjects(ctx, docs)
	})
}
