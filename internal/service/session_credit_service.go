package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/niaga-pos/internal/constants"
	"github.com/niaga-pos/internal/models"
	"github.com/niaga-pos/internal/repository"

	"gorm.io/gorm"
)

// SessionCreditService 课时余额服务
// 已用课时只能落在 [0, 总课时] 区间内，全部变动走流水
type SessionCreditService struct {
	creditRepo  repository.SessionCreditRepository
	catalogRepo repository.CatalogRepository
}

// NewSessionCreditService 创建课时余额服务
func NewSessionCreditService(creditRepo repository.SessionCreditRepository, catalogRepo repository.CatalogRepository) *SessionCreditService {
	return &SessionCreditService{creditRepo: creditRepo, catalogRepo: catalogRepo}
}

// AssignSessionCreditInput 发放课时输入
type AssignSessionCreditInput struct {
	TenantID      uint
	CustomerID    uint
	CatalogItemID uint
	ExpiresAt     *time.Time
	StaffID       uint
	Reference     string
	Note          string
}

// AssignSessionCredit 按套餐发放课时
func (s *SessionCreditService) AssignSessionCredit(input AssignSessionCreditInput) (*models.SessionCredit, error) {
	if input.TenantID == 0 || input.CustomerID == 0 || input.CatalogItemID == 0 {
		return nil, ErrSessionCreditInvalid
	}

	item, err := s.catalogRepo.GetByID(input.CatalogItemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.TenantID != input.TenantID {
		return nil, ErrCatalogNotFound
	}
	if item.Type != constants.CatalogItemTypePackage || item.SessionCount <= 0 {
		return nil, ErrSessionCreditNotPackage
	}

	var credit *models.SessionCredit
	err = s.creditRepo.Transaction(func(tx *gorm.DB) error {
		var txErr error
		credit, txErr = s.AssignInTx(tx, input, item, nil)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return credit, nil
}

// AssignInTx 在事务内发放课时
// 供 POS 售卖套餐时复用，套餐名做快照避免商品改名影响历史
func (s *SessionCreditService) AssignInTx(tx *gorm.DB, input AssignSessionCreditInput, item *models.CatalogItem, posTransactionID *uint) (*models.SessionCredit, error) {
	repo := s.creditRepo.WithTx(tx)

	reference := strings.TrimSpace(input.Reference)
	if reference != "" {
		existing, err := repo.GetTransactionByReference(reference)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return repo.GetByID(existing.SessionCreditID)
		}
	}

	now := time.Now()
	credit := &models.SessionCredit{
		TenantID:      input.TenantID,
		CustomerID:    input.CustomerID,
		CatalogItemID: item.ID,
		PackageName:   item.Name,
		TotalSessions: item.SessionCount,
		UsedSessions:  0,
		Status:        constants.SessionCreditStatusActive,
		ExpiresAt:     input.ExpiresAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repo.Create(credit); err != nil {
		return nil, err
	}

	if reference == "" {
		reference = fmt.Sprintf("credit:%d:assign", credit.ID)
	}
	txn := &models.SessionCreditTransaction{
		TenantID:         credit.TenantID,
		SessionCreditID:  credit.ID,
		Type:             constants.CreditTxnTypeAssign,
		Delta:            credit.TotalSessions,
		UsedBefore:       0,
		UsedAfter:        0,
		Reference:        reference,
		POSTransactionID: posTransactionID,
		StaffID:          input.StaffID,
		Note:             input.Note,
		CreatedAt:        now,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, ErrSessionCreditTxnFailed
	}
	return credit, nil
}

// ConsumeSessionCreditInput 消耗课时输入
type ConsumeSessionCreditInput struct {
	TenantID  uint
	CreditID  uint
	Sessions  int
	Reference string
	StaffID   uint
	Note      string
}

// ConsumeSessionCredit 消耗课时（独立入口）
func (s *SessionCreditService) ConsumeSessionCredit(input ConsumeSessionCreditInput) (*models.SessionCredit, error) {
	var credit *models.SessionCredit
	err := s.creditRepo.Transaction(func(tx *gorm.DB) error {
		var txErr error
		credit, txErr = s.ConsumeInTx(tx, input.TenantID, input.CreditID, input.Sessions, input.Reference, nil, input.StaffID, input.Note)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return credit, nil
}

// ConsumeInTx 在事务内消耗课时
// 条件更新保证并发下已用数不越界，用尽后标记状态
func (s *SessionCreditService) ConsumeInTx(tx *gorm.DB, tenantID, creditID uint, sessions int, reference string, posTransactionID *uint, staffID uint, note string) (*models.SessionCredit, error) {
	if sessions <= 0 {
		return nil, ErrSessionCreditInvalid
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrSessionCreditInvalid
	}

	repo := s.creditRepo.WithTx(tx)

	credit, err := repo.GetByIDForUpdate(creditID)
	if err != nil {
		return nil, err
	}
	if credit == nil || credit.TenantID != tenantID {
		return nil, ErrSessionCreditNotFound
	}
	if credit.Status != constants.SessionCreditStatusActive {
		return nil, ErrSessionCreditNotActive
	}
	if credit.ExpiresAt != nil && time.Now().After(*credit.ExpiresAt) {
		return nil, ErrSessionCreditExpired
	}

	existing, err := repo.GetTransactionByReference(reference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return credit, nil
	}

	ok, err := repo.AddUsedSessions(credit.ID, sessions)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSessionCreditInsufficient
	}

	before := credit.UsedSessions
	credit.UsedSessions += sessions
	if credit.UsedSessions >= credit.TotalSessions {
		credit.Status = constants.SessionCreditStatusDepleted
		credit.UpdatedAt = time.Now()
		if err := repo.Update(credit); err != nil {
			return nil, err
		}
	}

	txn := &models.SessionCreditTransaction{
		TenantID:         credit.TenantID,
		SessionCreditID:  credit.ID,
		Type:             constants.CreditTxnTypeConsume,
		Delta:            sessions,
		UsedBefore:       before,
		UsedAfter:        credit.UsedSessions,
		Reference:        reference,
		POSTransactionID: posTransactionID,
		StaffID:          staffID,
		Note:             note,
		CreatedAt:        time.Now(),
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, ErrSessionCreditTxnFailed
	}
	return credit, nil
}

// AdjustSessionCreditInput 调整课时输入
// Delta 为已用课时的相对调整；TotalSessions/UsedSessions 为管理员直接改写的绝对值
type AdjustSessionCreditInput struct {
	TenantID      uint
	CreditID      uint
	Delta         int // 正数增加已用，负数退回已用
	TotalSessions *int
	UsedSessions  *int
	Reference     string
	StaffID       uint
	Note          string
}

// AdjustSessionCredit 人工调整课时
// 相对调整走条件更新；绝对改写总数/已用后重新校验 0 <= 已用 <= 总数
func (s *SessionCreditService) AdjustSessionCredit(input AdjustSessionCreditInput) (*models.SessionCredit, error) {
	if input.TotalSessions == nil && input.UsedSessions == nil {
		var credit *models.SessionCredit
		err := s.creditRepo.Transaction(func(tx *gorm.DB) error {
			var txErr error
			credit, txErr = s.AdjustInTx(tx, input.TenantID, input.CreditID, input.Delta, input.Reference, nil, input.StaffID, input.Note)
			return txErr
		})
		if err != nil {
			return nil, err
		}
		return credit, nil
	}
	if input.Delta != 0 {
		return nil, ErrSessionCreditInvalid
	}

	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		reference = fmt.Sprintf("credit:%d:adjust:%d", input.CreditID, time.Now().UnixNano())
	}

	var credit *models.SessionCredit
	err := s.creditRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.creditRepo.WithTx(tx)

		var err error
		credit, err = repo.GetByIDForUpdate(input.CreditID)
		if err != nil {
			return err
		}
		if credit == nil || credit.TenantID != input.TenantID {
			return ErrSessionCreditNotFound
		}

		existing, err := repo.GetTransactionByReference(reference)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}

		newTotal := credit.TotalSessions
		if input.TotalSessions != nil {
			newTotal = *input.TotalSessions
		}
		newUsed := credit.UsedSessions
		if input.UsedSessions != nil {
			newUsed = *input.UsedSessions
		}
		if newTotal <= 0 || newUsed < 0 || newUsed > newTotal {
			return ErrSessionCreditOutOfRange
		}

		before := credit.UsedSessions
		credit.TotalSessions = newTotal
		credit.UsedSessions = newUsed
		if credit.Status != constants.SessionCreditStatusExpired {
			if newUsed >= newTotal {
				credit.Status = constants.SessionCreditStatusDepleted
			} else {
				credit.Status = constants.SessionCreditStatusActive
			}
		}
		credit.UpdatedAt = time.Now()
		if err := repo.Update(credit); err != nil {
			return err
		}

		txn := &models.SessionCreditTransaction{
			TenantID:        credit.TenantID,
			SessionCreditID: credit.ID,
			Type:            constants.CreditTxnTypeAdjust,
			Delta:           newUsed - before,
			UsedBefore:      before,
			UsedAfter:       newUsed,
			Reference:       reference,
			StaffID:         input.StaffID,
			Note:            input.Note,
			CreatedAt:       time.Now(),
		}
		if err := repo.CreateTransaction(txn); err != nil {
			return ErrSessionCreditTxnFailed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return credit, nil
}

// AdjustInTx 在事务内调整已用课时，可正可负
func (s *SessionCreditService) AdjustInTx(tx *gorm.DB, tenantID, creditID uint, delta int, reference string, posTransactionID *uint, staffID uint, note string) (*models.SessionCredit, error) {
	if delta == 0 {
		return nil, ErrSessionCreditInvalid
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		reference = fmt.Sprintf("credit:%d:adjust:%d", creditID, time.Now().UnixNano())
	}

	repo := s.creditRepo.WithTx(tx)

	credit, err := repo.GetByIDForUpdate(creditID)
	if err != nil {
		return nil, err
	}
	if credit == nil || credit.TenantID != tenantID {
		return nil, ErrSessionCreditNotFound
	}

	existing, err := repo.GetTransactionByReference(reference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return credit, nil
	}

	ok, err := repo.AddUsedSessions(credit.ID, delta)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSessionCreditOutOfRange
	}

	before := credit.UsedSessions
	credit.UsedSessions += delta
	if credit.UsedSessions >= credit.TotalSessions {
		credit.Status = constants.SessionCreditStatusDepleted
	} else if credit.Status == constants.SessionCreditStatusDepleted {
		credit.Status = constants.SessionCreditStatusActive
	}
	credit.UpdatedAt = time.Now()
	if err := repo.Update(credit); err != nil {
		return nil, err
	}

	txn := &models.SessionCreditTransaction{
		TenantID:         credit.TenantID,
		SessionCreditID:  credit.ID,
		Type:             constants.CreditTxnTypeAdjust,
		Delta:            delta,
		UsedBefore:       before,
		UsedAfter:        credit.UsedSessions,
		Reference:        reference,
		POSTransactionID: posTransactionID,
		StaffID:          staffID,
		Note:             note,
		CreatedAt:        time.Now(),
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, ErrSessionCreditTxnFailed
	}
	return credit, nil
}

// GetSessionCredit 获取课时余额
func (s *SessionCreditService) GetSessionCredit(tenantID, id uint) (*models.SessionCredit, error) {
	credit, err := s.creditRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if credit == nil || credit.TenantID != tenantID {
		return nil, ErrSessionCreditNotFound
	}
	return credit, nil
}

// ListSessionCredits 获取课时余额列表
func (s *SessionCreditService) ListSessionCredits(filter repository.SessionCreditListFilter) ([]models.SessionCredit, int64, error) {
	return s.creditRepo.List(filter)
}

// ListSessionCreditTransactions 获取课时流水
func (s *SessionCreditService) ListSessionCreditTransactions(filter repository.SessionCreditTxnListFilter) ([]models.SessionCreditTransaction, int64, error) {
	return s.creditRepo.ListTransactions(filter)
}
