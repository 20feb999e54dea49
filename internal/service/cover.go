package service

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/joinit/events-api/internal/identity"
	"github.com/joinit/events-api/internal/models"
	"github.com/joinit/events-api/internal/policy"
	"github.com/joinit/events-api/internal/repository"
	"github.com/joinit/events-api/pkg/filestore"
	"gorm.io/gorm"
)

var coverExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

var coverContentTypes = map[string]bool{"image/png": true, "image/jpeg": true}

func validateCover(filename string, data []byte) error {
	if len(data) == 0 {
		return NewValidationError(policy.FieldCoverImage, "The submitted file is empty.")
	}
	if !coverExtensions[strings.ToLower(filepath.Ext(filename))] {
		return NewValidationError(policy.FieldCoverImage, "Cover image must be a PNG, JPG, or JPEG file.")
	}
	if !coverContentTypes[http.DetectContentType(data)] {
		return NewValidationError(policy.FieldCoverImage, "Upload a valid image.")
	}
	return nil
}

// SetCover swaps the event's cover image. Identical bytes already stored for
// any event are reused; the previous image is released and deleted from the
// file store once nothing references it.
func (s *eventService) SetCover(ctx context.Context, user identity.User, id uint, filename string, data []byte) (*models.Event, error) {
	if user.ID == 0 {
		return nil, ErrNotAuthenticated
	}
	if err := validateCover(filename, data); err != nil {
		return nil, err
	}
	hash := filestore.ContentHash(data)

	var result *models.Event
	var changed bool
	var orphan *storedBlob
	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		orphan = nil
		event, err := s.lockForCover(ctx, tx, user, id)
		if err != nil {
			return err
		}
		result = event
		if event.CoverImageHash != nil && *event.CoverImageHash == hash {
			return nil
		}

		file, err := s.files.Acquire(ctx, tx, hash)
		if err != nil {
			return fmt.Errorf("acquire stored file: %w", err)
		}
		if file.Reference == "" {
			_, ref, err := s.store.Store(ctx, data)
			if err != nil {
				return fmt.Errorf("store cover image: %w", err)
			}
			file.Reference = ref
		}
		file.RefCount++
		if err := s.files.Save(ctx, tx, file); err != nil {
			return fmt.Errorf("save stored file: %w", err)
		}

		previous := event.CoverImageHash
		if err := s.events.UpdateCover(ctx, tx, id, &file.Hash, &file.Reference); err != nil {
			return fmt.Errorf("update cover: %w", err)
		}
		event.CoverImageHash = &file.Hash
		event.CoverImage = &file.Reference
		changed = true

		if previous != nil {
			orphan, err = s.release(ctx, tx, *previous)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.purge(ctx, orphan)

	if changed {
		notify(s.publisher, KeyEventUpdated, id, user.ID, map[string]any{"fields": []string{policy.FieldCoverImage}}, s.opts.Now())
	}
	return result, nil
}

func (s *eventService) RemoveCover(ctx context.Context, user identity.User, id uint) (*models.Event, error) {
	if user.ID == 0 {
		return nil, ErrNotAuthenticated
	}

	var result *models.Event
	var changed bool
	var orphan *storedBlob
	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		orphan = nil
		event, err := s.lockForCover(ctx, tx, user, id)
		if err != nil {
			return err
		}
		result = event
		if event.CoverImageHash == nil {
			return nil
		}

		previous := *event.CoverImageHash
		if err := s.events.UpdateCover(ctx, tx, id, nil, nil); err != nil {
			return fmt.Errorf("update cover: %w", err)
		}
		event.CoverImageHash = nil
		event.CoverImage = nil
		changed = true
		orphan, err = s.release(ctx, tx, previous)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.purge(ctx, orphan)

	if changed {
		notify(s.publisher, KeyEventUpdated, id, user.ID, map[string]any{"fields": []string{policy.FieldCoverImage}}, s.opts.Now())
	}
	return result, nil
}

func (s *eventService) lockForCover(ctx context.Context, tx *gorm.DB, user identity.User, id uint) (*models.Event, error) {
	event, err := s.events.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrEventNotFound)
	}
	if !policy.CanMutate(policy.RoleFor(user.ID, event.CreatedBy, user.IsStaff), policy.FieldCoverImage) {
		return nil, ErrNotOwner
	}
	if event.Cancelled() {
		return nil, ErrEventCancelled
	}
	return event, nil
}

type storedBlob struct {
	hash      string
	reference string
}

// release drops one reference to hash and deletes the row once the count
// reaches zero. The blob it pointed at is returned for purge, which runs after
// commit.
func (s *eventService) release(ctx context.Context, tx *gorm.DB, hash string) (*storedBlob, error) {
	file, err := s.files.FindForUpdate(ctx, tx, hash)
	if err != nil {
		if repository.IsNotFound(err) {
			log.Printf("[Cover] stored file %s already gone", hash)
			return nil, nil
		}
		return nil, fmt.Errorf("lock stored file: %w", err)
	}

	file.RefCount--
	if file.RefCount > 0 {
		return nil, s.files.Save(ctx, tx, file)
	}

	if err := s.files.Delete(ctx, tx, hash); err != nil {
		return nil, fmt.Errorf("delete stored file: %w", err)
	}
	if file.Reference == "" {
		return nil, nil
	}
	return &storedBlob{hash: hash, reference: file.Reference}, nil
}

// purge removes a released blob from the file store. The hash row is acquired
// again first: an upload of the same bytes that got there earlier keeps the
// blob, and one arriving later waits on the row lock and stores a fresh copy.
func (s *eventService) purge(ctx context.Context, blob *storedBlob) {
	if blob == nil {
		return
	}
	err := s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		file, err := s.files.Acquire(ctx, tx, blob.hash)
		if err != nil {
			return fmt.Errorf("acquire stored file: %w", err)
		}
		if file.RefCount > 0 {
			return nil
		}
		if err := s.store.Delete(ctx, blob.reference); err != nil {
			return fmt.Errorf("delete cover image: %w", err)
		}
		return s.files.Delete(ctx, tx, blob.hash)
	})
	if err != nil {
		log.Printf("[Cover] purge %s failed: %v", blob.hash, err)
	}
}
