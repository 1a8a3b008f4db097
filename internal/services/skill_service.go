package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Giftea/skillbazaar/internal/models"
	"github.com/Giftea/skillbazaar/pkg/validator"
)

var (
	// ErrSkillNotFound indicates the requested skill does not exist.
	ErrSkillNotFound = errors.New("skill service: skill not found")
	// ErrProfaneContent indicates the payload failed the content screen.
	ErrProfaneContent = errors.New("skill service: name or description contains blocked words")
)

// SkillService owns the skill catalog: registration, lookup, ordering, and
// the usage counter.
type SkillService struct {
	db *gorm.DB
}

// NewSkillService constructs a skill service once a database handle is supplied.
func NewSkillService(db *gorm.DB) (*SkillService, error) {
	if db == nil {
		return nil, errors.New("skill service: db is required")
	}
	return &SkillService{db: db}, nil
}

func ensuredContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// RegisterSkillInput captures the fields a publisher supplies. Identity,
// usage, and creation time are owned by the store.
type RegisterSkillInput struct {
	Name            string  `json:"name" validate:"required"`
	Description     string  `json:"description" validate:"required"`
	Endpoint        string  `json:"endpoint" validate:"required"`
	PriceUSD        float64 `json:"price_usd" validate:"required,gte=0.001,lte=10"`
	PublisherWallet string  `json:"publisher_wallet" validate:"required"`
	Category        string  `json:"category" validate:"required"`
	Port            int     `json:"port" validate:"required,gt=0,lte=65535"`
}

// Register inserts a new skill or, when the name already exists, replaces its
// metadata. ID, UsageCount, and CreatedAt are never touched by a
// re-registration. Returns the resulting full record.
func (s *SkillService) Register(ctx context.Context, input RegisterSkillInput) (*models.Skill, error) {
	if s == nil {
		return nil, errors.New("skill service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.Endpoint = strings.TrimSpace(input.Endpoint)
	input.PublisherWallet = strings.TrimSpace(input.PublisherWallet)
	input.Category = strings.TrimSpace(input.Category)

	if err := validator.ValidateStruct(input); err != nil {
		return nil, err
	}
	if _, err := ParseEndpointTemplate(input.Endpoint); err != nil {
		return nil, err
	}
	if containsProfanity(input.Name) || containsProfanity(input.Description) {
		return nil, ErrProfaneContent
	}

	var skill models.Skill
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("name = ?", input.Name).First(&skill).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			skill = models.Skill{
				Name:            input.Name,
				Description:     input.Description,
				Endpoint:        input.Endpoint,
				PriceUSD:        input.PriceUSD,
				PublisherWallet: input.PublisherWallet,
				Category:        input.Category,
				Port:            input.Port,
			}
			return tx.Create(&skill).Error
		case err != nil:
			return err
		}

		updates := map[string]any{
			"description":      input.Description,
			"endpoint":         input.Endpoint,
			"price_usd":        input.PriceUSD,
			"publisher_wallet": input.PublisherWallet,
			"category":         input.Category,
			"port":             input.Port,
		}
		if err := tx.Model(&skill).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("name = ?", input.Name).First(&skill).Error
	})
	if err != nil {
		return nil, err
	}

	return &skill, nil
}

// List returns all skills, newest first. Identifier breaks creation-time ties
// so the order is stable across calls.
func (s *SkillService) List(ctx context.Context) ([]models.Skill, error) {
	if s == nil {
		return nil, errors.New("skill service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	var skills []models.Skill
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&skills).Error; err != nil {
		return nil, err
	}
	return skills, nil
}

// GetByName fetches a single skill or ErrSkillNotFound.
func (s *SkillService) GetByName(ctx context.Context, name string) (*models.Skill, error) {
	if s == nil {
		return nil, errors.New("skill service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	var skill models.Skill
	err := s.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).First(&skill).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSkillNotFound
	}
	if err != nil {
		return nil, err
	}
	return &skill, nil
}

// IncrementUsage bumps the usage counter by one in a single atomic statement,
// so concurrent executions of the same skill are all counted. Unknown names
// are a silent no-op; callers check existence via GetByName first.
func (s *SkillService) IncrementUsage(ctx context.Context, name string) error {
	if s == nil {
		return errors.New("skill service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	return s.db.WithContext(ctx).Model(&models.Skill{}).
		Where("name = ?", name).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1)).Error
}
