package rules

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationEngine/internal/domain"
	policystore "github.com/m04kA/SMC-ReservationEngine/internal/infra/storage/policy"
	rulesetstore "github.com/m04kA/SMC-ReservationEngine/internal/infra/storage/ruleset"
	directoryClient "github.com/m04kA/SMC-ReservationEngine/internal/integrations/directoryservice"
	"github.com/m04kA/SMC-ReservationEngine/internal/service/rules/models"
	"github.com/m04kA/SMC-ReservationEngine/pkg/ptr"
)

// Service сервис для работы с правилами бронирования бизнеса:
// RuleSet, переопределения каталога ограничений и версии политики
type Service struct {
	rulesetRepo     RuleSetRepository
	constraintRepo  ConstraintRepository
	policyRepo      PolicyRepository
	txManager       TxManager
	directoryClient DirectoryServiceClient
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса правил
func NewService(
	rulesetRepo RuleSetRepository,
	constraintRepo ConstraintRepository,
	policyRepo PolicyRepository,
	txManager TxManager,
	directoryClient DirectoryServiceClient,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		rulesetRepo:     rulesetRepo,
		constraintRepo:  constraintRepo,
		policyRepo:      policyRepo,
		txManager:       txManager,
		directoryClient: directoryClient,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// GetRules возвращает действующие правила бизнеса: RuleSet (или значения
// по умолчанию), эффективный каталог ограничений и текущую версию политики.
// Публичный метод - доступен всем
func (s *Service) GetRules(ctx context.Context, businessID int64) (*models.RulesResponse, error) {
	s.logger.Info("GetRules: fetching rules for business=%d", businessID)

	business, err := s.getBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}

	ruleset, err := s.rulesetRepo.GetByBusiness(ctx, businessID)
	if err != nil {
		if errors.Is(err, rulesetstore.ErrRuleSetNotFound) {
			ruleset = domain.DefaultRuleSet(businessID)
		} else {
			s.logger.Error("GetRules: repository error for business=%d: %v", businessID, err)
			return nil, fmt.Errorf("%w: GetRules - repository error: %v", ErrInternal, err)
		}
	}

	defs, err := s.constraintRepo.GetCatalogByIndustry(ctx, business.Industry)
	if err != nil {
		s.logger.Error("GetRules: failed to load catalog for industry=%s: %v", business.Industry, err)
		return nil, fmt.Errorf("%w: GetRules - repository error: %v", ErrInternal, err)
	}
	overrides, err := s.constraintRepo.GetOverridesByBusiness(ctx, businessID)
	if err != nil {
		s.logger.Error("GetRules: failed to load overrides for business=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: GetRules - repository error: %v", ErrInternal, err)
	}

	policy, err := s.policyRepo.GetCurrent(ctx, businessID, s.timeProvider.Now())
	if err != nil {
		if errors.Is(err, policystore.ErrPolicyNotFound) {
			policy = domain.DefaultBookingPolicy(businessID)
		} else {
			s.logger.Error("GetRules: failed to load policy for business=%d: %v", businessID, err)
			return nil, fmt.Errorf("%w: GetRules - repository error: %v", ErrInternal, err)
		}
	}

	return &models.RulesResponse{
		RuleSet:     models.FromDomainRuleSet(ruleset),
		Constraints: models.FromDomainConstraints(defs, overrides),
		Policy:      models.FromDomainPolicy(policy),
	}, nil
}

// UpdateRules заменяет правила бизнеса целиком.
// Переопределения проверяются против каталога: некастомизируемые ограничения
// переопределить нельзя. Новая политика создаётся новой версией, прошлые
// решения не пересчитываются. Доступно только менеджерам бизнеса
func (s *Service) UpdateRules(ctx context.Context, req *models.UpdateRulesRequest) (*models.RulesResponse, error) {
	s.logger.Info("UpdateRules: updating rules for business=%d by user=%d", req.BusinessID, req.UserID)

	if err := s.validateRuleSet(&req.RuleSet); err != nil {
		s.logger.Warn("UpdateRules: validation failed for business=%d: %v", req.BusinessID, err)
		return nil, err
	}
	if req.Policy != nil {
		if err := s.validatePolicy(req.Policy); err != nil {
			s.logger.Warn("UpdateRules: policy validation failed for business=%d: %v", req.BusinessID, err)
			return nil, err
		}
	}

	business, err := s.getBusiness(ctx, req.BusinessID)
	if err != nil {
		return nil, err
	}
	if !s.isManager(business.ManagerIDs, req.UserID) {
		s.logger.Warn("UpdateRules: user=%d is not a manager of business=%d", req.UserID, req.BusinessID)
		return nil, ErrAccessDenied
	}

	defs, err := s.constraintRepo.GetCatalogByIndustry(ctx, business.Industry)
	if err != nil {
		s.logger.Error("UpdateRules: failed to load catalog for industry=%s: %v", business.Industry, err)
		return nil, fmt.Errorf("%w: UpdateRules - repository error: %v", ErrInternal, err)
	}
	catalog := make(map[int64]*domain.ConstraintDefinition, len(defs))
	for _, def := range defs {
		catalog[def.ID] = def
	}
	for _, override := range req.Overrides {
		def, ok := catalog[override.ConstraintID]
		if !ok {
			return nil, fmt.Errorf("%w: constraint %d", ErrConstraintNotFound, override.ConstraintID)
		}
		if !def.Customizable {
			return nil, fmt.Errorf("%w: constraint %d (%s)", ErrConstraintNotCustomizable, def.ID, def.Name)
		}
	}

	now := s.timeProvider.Now()
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if _, err := s.rulesetRepo.Upsert(txCtx, req.ToDomainRuleSet()); err != nil {
			return fmt.Errorf("%w: failed to upsert ruleset: %v", ErrInternal, err)
		}

		for _, override := range req.Overrides {
			_, err := s.constraintRepo.UpsertOverride(txCtx, &domain.BusinessConstraintOverride{
				BusinessID:   req.BusinessID,
				ConstraintID: override.ConstraintID,
				Enabled:      override.Enabled,
				Rules:        override.Rules,
				ApprovedBy:   ptr.Ptr(req.UserID),
				ApprovedAt:   &now,
			})
			if err != nil {
				return fmt.Errorf("%w: failed to upsert override for constraint %d: %v",
					ErrInternal, override.ConstraintID, err)
			}
		}

		if req.Policy != nil {
			version := 1
			current, err := s.policyRepo.GetCurrent(txCtx, req.BusinessID, now)
			if err == nil {
				version = current.Version + 1
			} else if !errors.Is(err, policystore.ErrPolicyNotFound) {
				return fmt.Errorf("%w: failed to load current policy: %v", ErrInternal, err)
			}

			if err := s.policyRepo.CloseCurrent(txCtx, req.BusinessID, now); err != nil {
				return fmt.Errorf("%w: failed to close current policy: %v", ErrInternal, err)
			}
			if _, err := s.policyRepo.Create(txCtx, req.Policy.ToDomainPolicy(req.BusinessID, version, now)); err != nil {
				return fmt.Errorf("%w: failed to create policy version %d: %v", ErrInternal, version, err)
			}
			s.logger.Info("UpdateRules: created policy version %d for business=%d", version, req.BusinessID)
		}

		return nil
	})
	if err != nil {
		s.logger.Error("UpdateRules: transaction failed for business=%d: %v", req.BusinessID, err)
		return nil, err
	}

	s.logger.Info("UpdateRules: successfully updated rules for business=%d", req.BusinessID)
	return s.GetRules(ctx, req.BusinessID)
}

// Вспомогательные методы

func (s *Service) getBusiness(ctx context.Context, businessID int64) (*directoryClient.Business, error) {
	business, err := s.directoryClient.GetBusiness(ctx, businessID)
	if err != nil {
		if errors.Is(err, directoryClient.ErrBusinessNotFound) {
			s.logger.Warn("getBusiness: business id=%d not found", businessID)
			return nil, ErrBusinessNotFound
		}
		s.logger.Error("getBusiness: failed to get business id=%d: %v", businessID, err)
		return nil, fmt.Errorf("%w: failed to get business: %v", ErrInternal, err)
	}
	return business, nil
}

func (s *Service) isManager(managerIDs []int64, userID int64) bool {
	for _, id := range managerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (s *Service) validateRuleSet(rs *models.RuleSetRequest) error {
	if rs.AdvanceBookingHours < domain.MinAdvanceBookingHours || rs.AdvanceBookingHours > domain.MaxAdvanceBookingHoursLimit {
		return fmt.Errorf("%w: advanceBookingHours must be between %d and %d",
			ErrInvalidInput, domain.MinAdvanceBookingHours, domain.MaxAdvanceBookingHoursLimit)
	}
	if rs.MaxAdvanceBookingDays != 0 &&
		(rs.MaxAdvanceBookingDays < domain.MinAdvanceBookingDays || rs.MaxAdvanceBookingDays > domain.MaxAdvanceBookingDaysLimit) {
		return fmt.Errorf("%w: maxAdvanceBookingDays must be 0 or between %d and %d",
			ErrInvalidInput, domain.MinAdvanceBookingDays, domain.MaxAdvanceBookingDaysLimit)
	}
	if rs.CancellationHours < 0 {
		return fmt.Errorf("%w: cancellationHours must not be negative", ErrInvalidInput)
	}
	if rs.BufferMinutes < domain.MinBufferMinutes || rs.BufferMinutes > domain.MaxBufferMinutes {
		return fmt.Errorf("%w: bufferMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinBufferMinutes, domain.MaxBufferMinutes)
	}
	if rs.DepositAmount < 0 {
		return fmt.Errorf("%w: depositAmount must not be negative", ErrInvalidInput)
	}
	if rs.RequireDeposit && rs.DepositAmount == 0 {
		return fmt.Errorf("%w: depositAmount is required when requireDeposit is set", ErrInvalidInput)
	}
	return nil
}

func (s *Service) validatePolicy(p *models.PolicyRequest) error {
	if p.CancellationFeeFlat > 0 && p.CancellationFeePercent > 0 {
		return fmt.Errorf("%w: cancellation fee must be flat or percent, not both", ErrInvalidInput)
	}
	if p.CancellationFeeFlat < 0 || p.CancellationFeePercent < 0 || p.CancellationFeePercent > 100 {
		return fmt.Errorf("%w: invalid cancellation fee", ErrInvalidInput)
	}
	if p.NoShowFeePercent < 0 || p.NoShowFeePercent > 100 {
		return fmt.Errorf("%w: noShowFeePercent must be between 0 and 100", ErrInvalidInput)
	}
	if p.DepositPercent < 0 || p.DepositPercent > 100 {
		return fmt.Errorf("%w: depositPercent must be between 0 and 100", ErrInvalidInput)
	}
	if p.FreeCancellationHours < 0 || p.MaxReschedules < 0 || p.RescheduleAllowedUntilHours < 0 ||
		p.NoShowGraceMinutes < 0 || p.NoShowWindowDays < 0 || p.NoShowBlockDays < 0 {
		return fmt.Errorf("%w: policy durations must not be negative", ErrInvalidInput)
	}
	return nil
}
