package pgrepo

import (
	"context"

	"github.com/google/uuid"

	"github.com/fsdevblog/creator-market/internal/domain"
	"github.com/fsdevblog/creator-market/internal/repository/repoargs"
	"github.com/fsdevblog/creator-market/pkg/uow"
)

type CampaignRepository struct {
	conn uow.DBTX
}

func NewCampaignRepository(conn uow.DBTX) *CampaignRepository {
	return &CampaignRepository{conn: conn}
}

const campaignColumns = `id, created_at, updated_at, brand_id, influencer_id, title, description, budget, status`

func (r *CampaignRepository) Create(ctx context.Context, args repoargs.CampaignCreate) (*domain.Campaign, error) {
	row := r.conn.QueryRow(ctx, `
		INSERT INTO campaigns (brand_id, title, description, budget, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+campaignColumns,
		args.BrandID, args.Title, args.Description, args.Budget, args.Status)

	campaign, err := scanCampaign(row)
	if err != nil {
		return nil, convertErr(err, "creating campaign")
	}
	return campaign, nil
}

func (r *CampaignRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)

	campaign, err := scanCampaign(row)
	if err != nil {
		return nil, convertErr(err, "finding campaign by id %s", id)
	}
	return campaign, nil
}

func (r *CampaignRepository) GetByBrandID(ctx context.Context, brandID uuid.UUID) ([]domain.Campaign, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT `+campaignColumns+` FROM campaigns
		WHERE brand_id = $1
		ORDER BY created_at DESC`, brandID)
	if err != nil {
		return nil, convertErr(err, "getting campaigns of brand %s", brandID)
	}
	defer rows.Close()

	var campaigns []domain.Campaign
	for rows.Next() {
		campaign, scanErr := scanCampaign(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "getting campaigns of brand %s", brandID)
		}
		campaigns = append(campaigns, *campaign)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting campaigns of brand %s", brandID)
	}
	return campaigns, nil
}

func (r *CampaignRepository) AssignInfluencer(
	ctx context.Context,
	campaignID uuid.UUID,
	influencerID uuid.UUID,
) (*domain.Campaign, error) {
	row := r.conn.QueryRow(ctx, `
		UPDATE campaigns SET influencer_id = $2, status = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+campaignColumns,
		campaignID, influencerID, domain.CampaignStatusInProgress)

	campaign, err := scanCampaign(row)
	if err != nil {
		return nil, convertErr(err, "assigning influencer to campaign %s", campaignID)
	}
	return campaign, nil
}

func (r *CampaignRepository) UpdateStatus(
	ctx context.Context,
	campaignID uuid.UUID,
	status domain.CampaignStatus,
) (*domain.Campaign, error) {
	row := r.conn.QueryRow(ctx, `
		UPDATE campaigns SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+campaignColumns,
		campaignID, status)

	campaign, err := scanCampaign(row)
	if err != nil {
		return nil, convertErr(err, "updating status of campaign %s", campaignID)
	}
	return campaign, nil
}

func scanCampaign(row scannable) (*domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.BrandID, &c.InfluencerID, &c.Title,
		&c.Description, &c.Budget, &c.Status)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &c, nil
}
