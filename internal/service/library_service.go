package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/periodize/internal/domain"
)

// LibraryService manages the planning library: workout templates and the
// programs built from them. Everything here is validated and ownership
// checked before it reaches a repository; the expander can then trust any
// program it is handed.
type LibraryService struct {
	templates domain.TemplateRepository
	programs  domain.ProgramRepository
	catalog   domain.ExerciseCatalog
	now       func() time.Time
}

func NewLibraryService(templates domain.TemplateRepository, programs domain.ProgramRepository, catalog domain.ExerciseCatalog) *LibraryService {
	return &LibraryService{
		templates: templates,
		programs:  programs,
		catalog:   catalog,
		now:       time.Now,
	}
}

// CreateTemplate validates and stores a template. Exercise references are
// checked against the catalog and names denormalized onto the template.
func (s *LibraryService) CreateTemplate(ctx context.Context, userID string, tmpl *domain.WorkoutTemplate) (*domain.WorkoutTemplate, error) {
	tmpl.UserID = userID
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	if err := s.denormalizeExercises(ctx, tmpl); err != nil {
		return nil, err
	}
	now := s.now()
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now
	if err := s.templates.Create(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (s *LibraryService) GetTemplate(ctx context.Context, userID, id string) (*domain.WorkoutTemplate, error) {
	tmpl, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tmpl.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return tmpl, nil
}

func (s *LibraryService) ListTemplates(ctx context.Context, userID string) ([]*domain.WorkoutTemplate, error) {
	return s.templates.ListByUser(ctx, userID)
}

// UpdateTemplate replaces a template's contents. Already-scheduled workouts
// keep the prescription they were expanded with; the change only affects
// future expansions.
func (s *LibraryService) UpdateTemplate(ctx context.Context, userID string, tmpl *domain.WorkoutTemplate) (*domain.WorkoutTemplate, error) {
	existing, err := s.GetTemplate(ctx, userID, tmpl.ID)
	if err != nil {
		return nil, err
	}
	tmpl.UserID = userID
	tmpl.CreatedAt = existing.CreatedAt
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	if err := s.denormalizeExercises(ctx, tmpl); err != nil {
		return nil, err
	}
	tmpl.UpdatedAt = s.now()
	if err := s.templates.Update(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (s *LibraryService) DeleteTemplate(ctx context.Context, userID, id string) error {
	if _, err := s.GetTemplate(ctx, userID, id); err != nil {
		return err
	}
	return s.templates.Delete(ctx, id)
}

func (s *LibraryService) denormalizeExercises(ctx context.Context, tmpl *domain.WorkoutTemplate) error {
	for i := range tmpl.Exercises {
		ex, err := s.catalog.GetByID(ctx, tmpl.Exercises[i].ExerciseID)
		if err != nil {
			return fmt.Errorf("template references exercise %s: %w", tmpl.Exercises[i].ExerciseID, err)
		}
		tmpl.Exercises[i].Name = ex.Name
	}
	return nil
}

// CreateProgram validates block structure and template references, then
// stores the program.
func (s *LibraryService) CreateProgram(ctx context.Context, userID string, program *domain.Program) (*domain.Program, error) {
	program.UserID = userID
	if err := program.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkTemplateRefs(ctx, userID, program); err != nil {
		return nil, err
	}
	now := s.now()
	program.CreatedAt = now
	program.UpdatedAt = now
	if err := s.programs.Create(ctx, program); err != nil {
		return nil, err
	}
	return program, nil
}

func (s *LibraryService) GetProgram(ctx context.Context, userID, id string) (*domain.Program, error) {
	program, err := s.programs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if program.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return program, nil
}

func (s *LibraryService) ListPrograms(ctx context.Context, userID string) ([]*domain.Program, error) {
	return s.programs.ListByUser(ctx, userID)
}

func (s *LibraryService) UpdateProgram(ctx context.Context, userID string, program *domain.Program) (*domain.Program, error) {
	existing, err := s.GetProgram(ctx, userID, program.ID)
	if err != nil {
		return nil, err
	}
	program.UserID = userID
	program.CreatedAt = existing.CreatedAt
	if err := program.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkTemplateRefs(ctx, userID, program); err != nil {
		return nil, err
	}
	program.UpdatedAt = s.now()
	if err := s.programs.Update(ctx, program); err != nil {
		return nil, err
	}
	return program, nil
}

func (s *LibraryService) DeleteProgram(ctx context.Context, userID, id string) error {
	if _, err := s.GetProgram(ctx, userID, id); err != nil {
		return err
	}
	return s.programs.Delete(ctx, id)
}

func (s *LibraryService) checkTemplateRefs(ctx context.Context, userID string, program *domain.Program) error {
	seen := map[string]bool{}
	for _, block := range program.Blocks {
		for _, a := range block.Assignments {
			if seen[a.TemplateID] {
				continue
			}
			tmpl, err := s.templates.GetByID(ctx, a.TemplateID)
			if err != nil {
				return fmt.Errorf("program references template %s: %w", a.TemplateID, err)
			}
			if tmpl.UserID != userID {
				return domain.ErrForbidden
			}
			seen[a.TemplateID] = true
		}
	}
	return nil
}
