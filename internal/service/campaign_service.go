package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/creator-market/internal/domain"
	"github.com/fsdevblog/creator-market/internal/repository/repoargs"
	"github.com/fsdevblog/creator-market/pkg/uow"
)

type CampaignService struct {
	uow          uow.UOW
	campaignRepo CampaignRepository
}

func NewCampaignService(u uow.UOW) (*CampaignService, error) {
	campaignRepo, campaignRepoErr := uow.GetRepositoryAs[CampaignRepository](
		u, uow.RepositoryName(repoargs.CampaignRepoName))
	if campaignRepoErr != nil {
		return nil, campaignRepoErr
	}
	return &CampaignService{
		uow:          u,
		campaignRepo: campaignRepo,
	}, nil
}

type CreateCampaignArgs struct {
	Title       string
	Description string
	Budget      decimal.Decimal
}

func (s *CampaignService) Create(
	ctx context.Context,
	brandID uuid.UUID,
	args CreateCampaignArgs,
) (*domain.Campaign, error) {
	if args.Budget.IsNegative() {
		return nil, fmt.Errorf("campaign budget cannot be negative: %w", domain.ErrInvalidArgument)
	}

	campaign, createErr := s.campaignRepo.Create(ctx, repoargs.CampaignCreate{
		BrandID:     brandID,
		Title:       args.Title,
		Description: args.Description,
		Budget:      args.Budget,
		Status:      domain.CampaignStatusDraft,
	})
	if createErr != nil {
		return nil, fmt.Errorf("creating campaign: %w", createErr)
	}
	return campaign, nil
}

func (s *CampaignService) Get(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return campaign, nil
}

func (s *CampaignService) GetByBrand(ctx context.Context, brandID uuid.UUID) ([]domain.Campaign, error) {
	campaigns, err := s.campaignRepo.GetByBrandID(ctx, brandID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return campaigns, nil
}

// AssignInfluencer назначает инфлюенсера на кампанию и переводит её в InProgress.
// Назначаемый юзер должен существовать и иметь роль influencer. Повторное назначение
// (кампания уже имеет инфлюенсера) — domain.ErrInvalidState.
func (s *CampaignService) AssignInfluencer(
	ctx context.Context,
	campaignID uuid.UUID,
	influencerID uuid.UUID,
) (*domain.Campaign, error) {
	var campaign *domain.Campaign
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		campaignRepo, campaignRepoErr := uow.GetAs[CampaignRepository](
			tx, uow.RepositoryName(repoargs.CampaignRepoName))
		if campaignRepoErr != nil {
			return campaignRepoErr //nolint:wrapcheck
		}
		userRepo, userRepoErr := uow.GetAs[UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}

		existing, findErr := campaignRepo.FindByID(c, campaignID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if existing.InfluencerID != nil {
			return fmt.Errorf("campaign already has an assigned influencer: %w", domain.ErrInvalidState)
		}

		influencer, userErr := userRepo.FindByID(c, influencerID)
		if userErr != nil {
			return fmt.Errorf("verifying influencer: %w", userErr)
		}
		if influencer.Role != domain.RoleInfluencer {
			return fmt.Errorf("user %s is not an influencer: %w", influencerID, domain.ErrInvalidArgument)
		}

		var assignErr error
		campaign, assignErr = campaignRepo.AssignInfluencer(c, campaignID, influencerID)
		return assignErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("assigning influencer: %w", txErr)
	}
	return campaign, nil
}

// UpdateStatus переводит кампанию в указанный статус. Неизвестная строка —
// domain.ErrInvalidArgument.
func (s *CampaignService) UpdateStatus(
	ctx context.Context,
	campaignID uuid.UUID,
	status string,
) (*domain.Campaign, error) {
	newStatus, ok := domain.ParseCampaignStatus(status)
	if !ok {
		return nil, fmt.Errorf("invalid campaign status %q: %w", status, domain.ErrInvalidArgument)
	}

	campaign, err := s.campaignRepo.UpdateStatus(ctx, campaignID, newStatus)
	if err != nil {
		return nil, fmt.Errorf("updating campaign status: %w", err)
	}
	return campaign, nil
}
