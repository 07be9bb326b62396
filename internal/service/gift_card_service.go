package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/niaga-pos/internal/constants"
	"github.com/niaga-pos/internal/logger"
	"github.com/niaga-pos/internal/models"
	"github.com/niaga-pos/internal/repository"

	"gorm.io/gorm"
)

// GiftCardService 礼品卡服务
// 余额变动全部走台账：锁卡、幂等检查、记录变动前后余额、写流水
type GiftCardService struct {
	giftCardRepo repository.GiftCardRepository
}

// NewGiftCardService 创建礼品卡服务
func NewGiftCardService(giftCardRepo repository.GiftCardRepository) *GiftCardService {
	return &GiftCardService{giftCardRepo: giftCardRepo}
}

// IssueGiftCardInput 发行礼品卡输入
type IssueGiftCardInput struct {
	TenantID      uint
	Code          string // 留空则自动生成
	CustomerID    *uint
	InitialAmount models.Cents
	Currency      string
	ExpiresAt     *time.Time
	IssuedBy      uint
	Note          string
}

// GiftCardMutationInput 充值/扣减输入
type GiftCardMutationInput struct {
	TenantID  uint
	CardID    uint
	Amount    models.Cents
	Reference string
	StaffID   uint
	Note      string
}

// IssueGiftCard 发行礼品卡并写入发行流水
func (s *GiftCardService) IssueGiftCard(input IssueGiftCardInput) (*models.GiftCard, error) {
	if input.TenantID == 0 || input.InitialAmount <= 0 {
		return nil, ErrGiftCardInvalid
	}

	code := strings.TrimSpace(strings.ToUpper(input.Code))
	if code == "" {
		code = generateGiftCardCode()
	}

	existing, err := s.giftCardRepo.GetByCode(input.TenantID, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrGiftCardCodeExists
	}

	currency := strings.TrimSpace(strings.ToUpper(input.Currency))
	if currency == "" {
		currency = constants.DefaultCurrency
	}

	now := time.Now()
	card := &models.GiftCard{
		TenantID:      input.TenantID,
		Code:          code,
		CustomerID:    input.CustomerID,
		InitialAmount: input.InitialAmount,
		Balance:       input.InitialAmount,
		Currency:      currency,
		Status:        constants.GiftCardStatusActive,
		ExpiresAt:     input.ExpiresAt,
		IssuedBy:      input.IssuedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.giftCardRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.giftCardRepo.WithTx(tx)
		if err := repo.Create(card); err != nil {
			return ErrGiftCardCreateFailed
		}
		txn := &models.GiftCardTransaction{
			TenantID:      card.TenantID,
			GiftCardID:    card.ID,
			Type:          constants.GiftCardTxnTypeIssue,
			Direction:     constants.GiftCardTxnDirectionIn,
			Amount:        card.InitialAmount,
			BalanceBefore: 0,
			BalanceAfter:  card.InitialAmount,
			Reference:     fmt.Sprintf("gc:%d:issue", card.ID),
			StaffID:       input.IssuedBy,
			Note:          input.Note,
			CreatedAt:     now,
		}
		if err := repo.CreateTransaction(txn); err != nil {
			return ErrGiftCardTxnFailed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("礼品卡发行成功", "card_id", card.ID, "tenant_id", card.TenantID, "amount", card.InitialAmount)
	return card, nil
}

// TopupGiftCard 礼品卡充值
func (s *GiftCardService) TopupGiftCard(input GiftCardMutationInput) (*models.GiftCard, error) {
	if input.Amount <= 0 {
		return nil, ErrGiftCardInvalid
	}
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		reference = fmt.Sprintf("gc:%d:topup:%d", input.CardID, time.Now().UnixNano())
	}

	var card *models.GiftCard
	var expired bool
	err := s.giftCardRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.giftCardRepo.WithTx(tx)

		var err error
		card, err = repo.GetByIDForUpdate(input.CardID)
		if err != nil {
			return err
		}
		if card == nil || card.TenantID != input.TenantID {
			return ErrGiftCardNotFound
		}
		if card.Status == constants.GiftCardStatusRemoved {
			return ErrGiftCardRemoved
		}
		if card.Status == constants.GiftCardStatusCancelled {
			return ErrGiftCardNotActive
		}
		if err := expireIfDue(repo, card); err != nil {
			if errors.Is(err, ErrGiftCardExpired) {
				// 提交状态翻转，仅拒绝本次入账
				expired = true
				return nil
			}
			return err
		}

		// 幂等：同一参考号只入账一次
		existing, err := repo.GetTransactionByReference(reference)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}

		before := card.Balance
		card.Balance += input.Amount
		if card.Status == constants.GiftCardStatusDepleted {
			card.Status = constants.GiftCardStatusActive
		}
		card.UpdatedAt = time.Now()
		if err := repo.Update(card); err != nil {
			return ErrGiftCardUpdateFailed
		}

		txn := &models.GiftCardTransaction{
			TenantID:      card.TenantID,
			GiftCardID:    card.ID,
			Type:          constants.GiftCardTxnTypeTopup,
			Direction:     constants.GiftCardTxnDirectionIn,
			Amount:        input.Amount,
			BalanceBefore: before,
			BalanceAfter:  card.Balance,
			Reference:     reference,
			StaffID:       input.StaffID,
			Note:          input.Note,
			CreatedAt:     time.Now(),
		}
		if err := repo.CreateTransaction(txn); err != nil {
			return ErrGiftCardTxnFailed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, ErrGiftCardExpired
	}
	return card, nil
}

// RedeemGiftCard 礼品卡扣减（独立入口）
func (s *GiftCardService) RedeemGiftCard(input GiftCardMutationInput) (*models.GiftCard, error) {
	var card *models.GiftCard
	err := s.giftCardRepo.Transaction(func(tx *gorm.DB) error {
		var err error
		card, err = s.RedeemInTx(tx, input.TenantID, input.CardID, input.Amount, input.Reference, nil, input.StaffID, input.Note)
		return err
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// RedeemInTx 在事务内扣减礼品卡余额
// 供 POS 交易收款复用，余额归零时标记为已用尽
func (s *GiftCardService) RedeemInTx(tx *gorm.DB, tenantID, cardID uint, amount models.Cents, reference string, posTransactionID *uint, staffID uint, note string) (*models.GiftCard, error) {
	if amount <= 0 {
		return nil, ErrGiftCardInvalid
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrGiftCardInvalid
	}

	repo := s.giftCardRepo.WithTx(tx)

	card, err := repo.GetByIDForUpdate(cardID)
	if err != nil {
		return nil, err
	}
	if card == nil || card.TenantID != tenantID {
		return nil, ErrGiftCardNotFound
	}
	if err := expireIfDue(repo, card); err != nil {
		return nil, err
	}
	if card.Status != constants.GiftCardStatusActive {
		return nil, ErrGiftCardNotActive
	}

	existing, err := repo.GetTransactionByReference(reference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return card, nil
	}

	if card.Balance < amount {
		return nil, ErrGiftCardInsufficient
	}

	before := card.Balance
	card.Balance -= amount
	if card.Balance == 0 {
		card.Status = constants.GiftCardStatusDepleted
	}
	card.UpdatedAt = time.Now()
	if err := repo.Update(card); err != nil {
		return nil, ErrGiftCardUpdateFailed
	}

	txn := &models.GiftCardTransaction{
		TenantID:         card.TenantID,
		GiftCardID:       card.ID,
		Type:             constants.GiftCardTxnTypeRedeem,
		Direction:        constants.GiftCardTxnDirectionOut,
		Amount:           amount,
		BalanceBefore:    before,
		BalanceAfter:     card.Balance,
		Reference:        reference,
		POSTransactionID: posTransactionID,
		StaffID:          staffID,
		Note:             note,
		CreatedAt:        time.Now(),
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, ErrGiftCardTxnFailed
	}
	return card, nil
}

// expireIfDue 过期惰性翻转：到期的卡在下一次余额操作时标记为 expired
func expireIfDue(repo *repository.GormGiftCardRepository, card *models.GiftCard) error {
	if card.Status == constants.GiftCardStatusExpired {
		return ErrGiftCardExpired
	}
	if card.ExpiresAt == nil || !time.Now().After(*card.ExpiresAt) {
		return nil
	}
	if card.Status != constants.GiftCardStatusActive && card.Status != constants.GiftCardStatusDepleted {
		return nil
	}
	card.Status = constants.GiftCardStatusExpired
	card.UpdatedAt = time.Now()
	if err := repo.Update(card); err != nil {
		return ErrGiftCardUpdateFailed
	}
	return ErrGiftCardExpired
}

// RefundInTx 在作废事务内退回礼品卡余额
func (s *GiftCardService) RefundInTx(tx *gorm.DB, tenantID, cardID uint, amount models.Cents, reference string, posTransactionID *uint, staffID uint, note string) error {
	if amount <= 0 {
		return ErrGiftCardInvalid
	}
	repo := s.giftCardRepo.WithTx(tx)

	card, err := repo.GetByIDForUpdate(cardID)
	if err != nil {
		return err
	}
	if card == nil || card.TenantID != tenantID {
		return ErrGiftCardNotFound
	}
	if card.Status == constants.GiftCardStatusRemoved {
		return ErrGiftCardRemoved
	}

	existing, err := repo.GetTransactionByReference(reference)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	before := card.Balance
	card.Balance += amount
	if card.Status == constants.GiftCardStatusDepleted {
		card.Status = constants.GiftCardStatusActive
	}
	card.UpdatedAt = time.Now()
	if err := repo.Update(card); err != nil {
		return ErrGiftCardUpdateFailed
	}

	txn := &models.GiftCardTransaction{
		TenantID:         card.TenantID,
		GiftCardID:       card.ID,
		Type:             constants.GiftCardTxnTypeTopup,
		Direction:        constants.GiftCardTxnDirectionIn,
		Amount:           amount,
		BalanceBefore:    before,
		BalanceAfter:     card.Balance,
		Reference:        reference,
		POSTransactionID: posTransactionID,
		StaffID:          staffID,
		Note:             note,
		CreatedAt:        time.Now(),
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return ErrGiftCardTxnFailed
	}
	return nil
}

// CancelGiftCard 作废礼品卡，冻结剩余余额
func (s *GiftCardService) CancelGiftCard(tenantID, cardID, staffID uint, note string) (*models.GiftCard, error) {
	return s.transitionStatus(tenantID, cardID, staffID, note,
		constants.GiftCardTxnTypeCancel,
		func(card *models.GiftCard) error {
			if card.Status == constants.GiftCardStatusRemoved {
				return ErrGiftCardRemoved
			}
			if card.Status == constants.GiftCardStatusCancelled {
				return ErrGiftCardNotActive
			}
			card.Status = constants.GiftCardStatusCancelled
			return nil
		})
}

// ReactivateGiftCard 恢复已作废的礼品卡
func (s *GiftCardService) ReactivateGiftCard(tenantID, cardID, staffID uint, note string) (*models.GiftCard, error) {
	return s.transitionStatus(tenantID, cardID, staffID, note,
		constants.GiftCardTxnTypeReactivate,
		func(card *models.GiftCard) error {
			if card.Status == constants.GiftCardStatusRemoved {
				return ErrGiftCardRemoved
			}
			if card.Status != constants.GiftCardStatusCancelled {
				return ErrGiftCardNotCancelled
			}
			if card.Balance <= 0 {
				return ErrGiftCardNoBalance
			}
			card.Status = constants.GiftCardStatusActive
			return nil
		})
}

// ExpireGiftCard 将到期礼品卡标记为已过期，供后台扫描任务调用
func (s *GiftCardService) ExpireGiftCard(tenantID, cardID uint, note string) (*models.GiftCard, error) {
	return s.transitionStatus(tenantID, cardID, 0, note,
		constants.GiftCardTxnTypeExpire,
		func(card *models.GiftCard) error {
			if card.Status == constants.GiftCardStatusRemoved {
				return ErrGiftCardRemoved
			}
			if card.Status == constants.GiftCardStatusCancelled {
				return ErrGiftCardNotActive
			}
			if card.Status == constants.GiftCardStatusExpired {
				return ErrGiftCardExpired
			}
			card.Status = constants.GiftCardStatusExpired
			return nil
		})
}

// RemoveGiftCard 永久下架礼品卡，不可恢复
func (s *GiftCardService) RemoveGiftCard(tenantID, cardID, staffID uint, note string) (*models.GiftCard, error) {
	return s.transitionStatus(tenantID, cardID, staffID, note,
		constants.GiftCardTxnTypeRemove,
		func(card *models.GiftCard) error {
			if card.Status == constants.GiftCardStatusRemoved {
				return ErrGiftCardRemoved
			}
			card.Status = constants.GiftCardStatusRemoved
			return nil
		})
}

// transitionStatus 状态流转并写审计流水，金额为 0 仅留痕
func (s *GiftCardService) transitionStatus(tenantID, cardID, staffID uint, note, txnType string, mutate func(card *models.GiftCard) error) (*models.GiftCard, error) {
	var card *models.GiftCard
	err := s.giftCardRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.giftCardRepo.WithTx(tx)

		var err error
		card, err = repo.GetByIDForUpdate(cardID)
		if err != nil {
			return err
		}
		if card == nil || card.TenantID != tenantID {
			return ErrGiftCardNotFound
		}
		if err := mutate(card); err != nil {
			return err
		}
		card.UpdatedAt = time.Now()
		if err := repo.Update(card); err != nil {
			return ErrGiftCardUpdateFailed
		}

		txn := &models.GiftCardTransaction{
			TenantID:      card.TenantID,
			GiftCardID:    card.ID,
			Type:          txnType,
			Direction:     constants.GiftCardTxnDirectionOut,
			Amount:        0,
			BalanceBefore: card.Balance,
			BalanceAfter:  card.Balance,
			Reference:     fmt.Sprintf("gc:%d:%s:%d", card.ID, txnType, time.Now().UnixNano()),
			StaffID:       staffID,
			Note:          note,
			CreatedAt:     time.Now(),
		}
		if err := repo.CreateTransaction(txn); err != nil {
			return ErrGiftCardTxnFailed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// GetGiftCard 获取礼品卡
func (s *GiftCardService) GetGiftCard(tenantID, id uint) (*models.GiftCard, error) {
	card, err := s.giftCardRepo.GetByID(id)
	if err != nil {
		return nil, ErrGiftCardFetchFailed
	}
	if card == nil || card.TenantID != tenantID {
		return nil, ErrGiftCardNotFound
	}
	return card, nil
}

// GetGiftCardByCode 根据卡号获取礼品卡
func (s *GiftCardService) GetGiftCardByCode(tenantID uint, code string) (*models.GiftCard, error) {
	card, err := s.giftCardRepo.GetByCode(tenantID, code)
	if err != nil {
		return nil, ErrGiftCardFetchFailed
	}
	if card == nil {
		return nil, ErrGiftCardNotFound
	}
	return card, nil
}

// ListGiftCards 获取礼品卡列表
func (s *GiftCardService) ListGiftCards(filter repository.GiftCardListFilter) ([]models.GiftCard, int64, error) {
	return s.giftCardRepo.List(filter)
}

// ListGiftCardTransactions 获取礼品卡流水
func (s *GiftCardService) ListGiftCardTransactions(filter repository.GiftCardTxnListFilter) ([]models.GiftCardTransaction, int64, error) {
	return s.giftCardRepo.ListTransactions(filter)
}

// generateGiftCardCode 生成卡号：GC + 时间戳 + 随机后缀
func generateGiftCardCode() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("GC%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("GC%d%s", time.Now().Unix(), strings.ToUpper(hex.EncodeToString(buf)))
}
