package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/niaga-pos/internal/constants"
	"github.com/niaga-pos/internal/logger"
	"github.com/niaga-pos/internal/models"
	"github.com/niaga-pos/internal/queue"
	"github.com/niaga-pos/internal/repository"

	"gorm.io/gorm"
)

// POSService 收银交易服务
// 建单、作废、移除都在单个数据库事务内完成，优惠券核销与
// 礼品卡/课时扣减与交易落库同生共死
type POSService struct {
	posRepo       repository.POSTransactionRepository
	catalogRepo   repository.CatalogRepository
	customerRepo  repository.CustomerRepository
	tenantRepo    repository.TenantRepository
	voucherSvc    *VoucherService
	giftCardSvc   *GiftCardService
	creditSvc     *SessionCreditService
	queueClient   *queue.Client
	receiptPrefix string
}

// NewPOSService 创建收银交易服务
func NewPOSService(
	posRepo repository.POSTransactionRepository,
	catalogRepo repository.CatalogRepository,
	customerRepo repository.CustomerRepository,
	tenantRepo repository.TenantRepository,
	voucherSvc *VoucherService,
	giftCardSvc *GiftCardService,
	creditSvc *SessionCreditService,
	queueClient *queue.Client,
	receiptPrefix string,
) *POSService {
	if strings.TrimSpace(receiptPrefix) == "" {
		receiptPrefix = constants.DefaultReceiptPrefix
	}
	return &POSService{
		posRepo:       posRepo,
		catalogRepo:   catalogRepo,
		customerRepo:  customerRepo,
		tenantRepo:    tenantRepo,
		voucherSvc:    voucherSvc,
		giftCardSvc:   giftCardSvc,
		creditSvc:     creditSvc,
		queueClient:   queueClient,
		receiptPrefix: receiptPrefix,
	}
}

// CreateTransactionItemInput 交易明细输入
type CreateTransactionItemInput struct {
	CatalogItemID uint
	Quantity      int
}

// CreateTransactionInput 创建交易输入
type CreateTransactionInput struct {
	TenantID        uint
	StaffID         uint
	CustomerID      *uint
	Items           []CreateTransactionItemInput
	VoucherCode     string
	PaymentMethod   string
	GiftCardID      uint // payment_method 为 gift_card 时必填
	SessionCreditID uint // payment_method 为 session_credit 时必填
	Tendered        models.Cents
	Note            string
}

// CreateTransaction 创建收银交易
func (s *POSService) CreateTransaction(input CreateTransactionInput) (*models.POSTransaction, error) {
	if input.TenantID == 0 || input.StaffID == 0 {
		return nil, ErrTransactionInvalid
	}
	if len(input.Items) == 0 {
		return nil, ErrTransactionEmptyItems
	}
	if !validPaymentMethod(input.PaymentMethod) {
		return nil, ErrTransactionInvalid
	}

	tenant, err := s.tenantRepo.GetByID(input.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTransactionInvalid
	}

	customerID := uint(0)
	if input.CustomerID != nil && *input.CustomerID != 0 {
		customer, err := s.customerRepo.GetByID(*input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil || customer.TenantID != input.TenantID {
			return nil, ErrCustomerNotFound
		}
		customerID = customer.ID
	}

	items, subtotal, err := s.buildItems(input.TenantID, input.Items)
	if err != nil {
		return nil, err
	}

	// 优惠券只做只读校验，核销延后到事务内
	var discount models.Cents
	var voucher *models.Voucher
	if strings.TrimSpace(input.VoucherCode) != "" {
		discount, voucher, err = s.voucherSvc.ApplyVoucher(input.TenantID, subtotal, input.VoucherCode, customerID, items)
		if err != nil {
			return nil, err
		}
	}
	total := subtotal - discount
	if total < 0 {
		total = 0
	}

	var tendered, change models.Cents
	if input.PaymentMethod == constants.PaymentMethodCash {
		tendered = input.Tendered
		if tendered < total {
			return nil, ErrTenderInsufficient
		}
		change = tendered - total
	}

	now := time.Now()
	txn := &models.POSTransaction{
		TenantID:       input.TenantID,
		StaffID:        input.StaffID,
		CustomerID:     input.CustomerID,
		Status:         constants.TransactionStatusCompleted,
		Currency:       tenant.Currency,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          total,
		PaymentMethod:  input.PaymentMethod,
		Tendered:       tendered,
		Change:         change,
		Note:           input.Note,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if voucher != nil {
		txn.VoucherID = &voucher.ID
		txn.VoucherCode = voucher.Code
	}

	prefix := strings.TrimSpace(tenant.ReceiptPrefix)
	if prefix == "" {
		prefix = s.receiptPrefix
	}

	err = s.posRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.posRepo.WithTx(tx)

		day := now.Format("20060102")
		seq, err := repo.NextReceiptSeq(input.TenantID, day)
		if err != nil {
			return ErrReceiptNumberFailed
		}
		txn.ReceiptNumber = fmt.Sprintf("%s-%s-%06d", prefix, day, seq)
		txn.Items = items

		if err := repo.Create(txn); err != nil {
			return ErrTransactionCreateFailed
		}

		if voucher != nil {
			if err := s.voucherSvc.RedeemInTx(tx, voucher, customerID, txn.ID, discount); err != nil {
				return err
			}
		}

		switch input.PaymentMethod {
		case constants.PaymentMethodGiftCard:
			if input.GiftCardID == 0 {
				return ErrGiftCardInvalid
			}
			card, err := s.giftCardSvc.RedeemInTx(tx, input.TenantID, input.GiftCardID, total,
				fmt.Sprintf("pos:%d:payment", txn.ID), &txn.ID, input.StaffID,
				fmt.Sprintf("小票 %s 支付", txn.ReceiptNumber))
			if err != nil {
				return err
			}
			txn.GiftCardID = &card.ID
		case constants.PaymentMethodCredit:
			if input.SessionCreditID == 0 {
				return ErrSessionCreditInvalid
			}
			sessions := serviceSessionCount(items)
			if sessions <= 0 {
				return ErrSessionCreditInvalid
			}
			if _, err := s.creditSvc.ConsumeInTx(tx, input.TenantID, input.SessionCreditID, sessions,
				fmt.Sprintf("pos:%d:payment", txn.ID), &txn.ID, input.StaffID,
				fmt.Sprintf("小票 %s 核销", txn.ReceiptNumber)); err != nil {
				return err
			}
			creditID := input.SessionCreditID
			for i := range txn.Items {
				if txn.Items[i].ItemType == constants.CatalogItemTypeService {
					txn.Items[i].SessionCreditID = &creditID
				}
			}
		}

		// 售出套餐时给会员发放课时
		if customerID != 0 {
			if err := s.assignPackageCredits(tx, txn, customerID, input.StaffID); err != nil {
				return err
			}
		}

		if txn.GiftCardID != nil || s.hasCreditItems(txn) {
			if err := repo.Update(txn); err != nil {
				return ErrTransactionCreateFailed
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.queueClient != nil {
		if err := s.queueClient.EnqueueReceiptNotify(queue.ReceiptNotifyPayload{
			TransactionID: txn.ID,
			TenantID:      txn.TenantID,
			ReceiptNumber: txn.ReceiptNumber,
		}); err != nil {
			logger.Warnw("小票通知任务入队失败", "transaction_id", txn.ID, "error", err)
		}
	}

	logger.Infow("交易创建成功", "transaction_id", txn.ID, "receipt_number", txn.ReceiptNumber, "total", txn.Total)
	return s.posRepo.GetByID(txn.ID)
}

// buildItems 校验目录项并生成明细快照
func (s *POSService) buildItems(tenantID uint, inputs []CreateTransactionItemInput) ([]models.POSTransactionItem, models.Cents, error) {
	ids := make([]uint, 0, len(inputs))
	for _, in := range inputs {
		if in.CatalogItemID == 0 || in.Quantity <= 0 {
			return nil, 0, ErrTransactionInvalid
		}
		ids = append(ids, in.CatalogItemID)
	}

	catalogItems, err := s.catalogRepo.ListByIDs(ids)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[uint]models.CatalogItem, len(catalogItems))
	for _, item := range catalogItems {
		byID[item.ID] = item
	}

	now := time.Now()
	items := make([]models.POSTransactionItem, 0, len(inputs))
	var subtotal models.Cents
	for _, in := range inputs {
		item, ok := byID[in.CatalogItemID]
		if !ok || item.TenantID != tenantID {
			return nil, 0, ErrItemNotFound
		}
		if !item.IsActive {
			return nil, 0, ErrItemInactive
		}
		lineTotal := models.Cents(int64(item.UnitPrice) * int64(in.Quantity))
		itemID := item.ID
		items = append(items, models.POSTransactionItem{
			CatalogItemID: &itemID,
			ItemName:      item.Name,
			SKU:           item.SKU,
			ItemType:      item.Type,
			UnitPrice:     item.UnitPrice,
			Quantity:      in.Quantity,
			LineTotal:     lineTotal,
			CreatedAt:     now,
		})
		subtotal += lineTotal
	}
	return items, subtotal, nil
}

// assignPackageCredits 为交易中的套餐明细发放课时
func (s *POSService) assignPackageCredits(tx *gorm.DB, txn *models.POSTransaction, customerID, staffID uint) error {
	for i := range txn.Items {
		item := &txn.Items[i]
		if item.ItemType != constants.CatalogItemTypePackage || item.CatalogItemID == nil {
			continue
		}
		catalogItem, err := s.catalogRepo.GetByID(*item.CatalogItemID)
		if err != nil {
			return err
		}
		if catalogItem == nil || catalogItem.SessionCount <= 0 {
			continue
		}
		for q := 0; q < item.Quantity; q++ {
			credit, err := s.creditSvc.AssignInTx(tx, AssignSessionCreditInput{
				TenantID:   txn.TenantID,
				CustomerID: customerID,
				StaffID:    staffID,
				Reference:  fmt.Sprintf("pos:%d:item:%d:assign:%d", txn.ID, i, q),
				Note:       fmt.Sprintf("小票 %s 购买", txn.ReceiptNumber),
			}, catalogItem, &txn.ID)
			if err != nil {
				return err
			}
			if item.SessionCreditID == nil {
				item.SessionCreditID = &credit.ID
			}
		}
	}
	return nil
}

func (s *POSService) hasCreditItems(txn *models.POSTransaction) bool {
	for i := range txn.Items {
		if txn.Items[i].SessionCreditID != nil {
			return true
		}
	}
	return false
}

// serviceSessionCount 统计服务类明细的总次数
func serviceSessionCount(items []models.POSTransactionItem) int {
	total := 0
	for _, item := range items {
		if item.ItemType == constants.CatalogItemTypeService {
			total += item.Quantity
		}
	}
	return total
}

func validPaymentMethod(method string) bool {
	switch method {
	case constants.PaymentMethodCash,
		constants.PaymentMethodCard,
		constants.PaymentMethodQRPay,
		constants.PaymentMethodBankTransfer,
		constants.PaymentMethodEwallet,
		constants.PaymentMethodGiftCard,
		constants.PaymentMethodCredit:
		return true
	}
	return false
}

// VoidTransactionInput 作废交易输入
type VoidTransactionInput struct {
	TenantID      uint
	TransactionID uint
	StaffID       uint
	Reason        string
}

// VoidTransaction 作废交易
// 回退优惠券使用次数、退回礼品卡扣款、退还已核销课时
func (s *POSService) VoidTransaction(input VoidTransactionInput) (*models.POSTransaction, error) {
	if input.TransactionID == 0 {
		return nil, ErrTransactionInvalid
	}

	err := s.posRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.posRepo.WithTx(tx)

		txn, err := repo.GetByIDForUpdate(input.TransactionID)
		if err != nil {
			return err
		}
		if txn == nil || txn.TenantID != input.TenantID {
			return ErrTransactionNotFound
		}
		if txn.Status == constants.TransactionStatusVoided {
			return ErrTransactionAlreadyVoided
		}
		if txn.Status != constants.TransactionStatusCompleted {
			return ErrTransactionNotCompleted
		}

		if txn.VoucherID != nil {
			if err := s.voucherSvc.ReleaseInTx(tx, *txn.VoucherID); err != nil {
				return err
			}
		}

		if txn.PaymentMethod == constants.PaymentMethodGiftCard && txn.GiftCardID != nil && txn.Total > 0 {
			if err := s.giftCardSvc.RefundInTx(tx, txn.TenantID, *txn.GiftCardID, txn.Total,
				fmt.Sprintf("pos:%d:void_refund", txn.ID), &txn.ID, input.StaffID,
				fmt.Sprintf("小票 %s 作废退款", txn.ReceiptNumber)); err != nil {
				return err
			}
		}

		if txn.PaymentMethod == constants.PaymentMethodCredit {
			full, err := repo.GetByID(txn.ID)
			if err != nil {
				return err
			}
			if full != nil {
				sessions := serviceSessionCount(full.Items)
				creditID := firstCreditID(full.Items)
				if sessions > 0 && creditID != 0 {
					if _, err := s.creditSvc.AdjustInTx(tx, txn.TenantID, creditID, -sessions,
						fmt.Sprintf("pos:%d:void_credit", txn.ID), &txn.ID, input.StaffID,
						fmt.Sprintf("小票 %s 作废退还", txn.ReceiptNumber)); err != nil {
						return err
					}
				}
			}
		}

		now := time.Now()
		txn.Status = constants.TransactionStatusVoided
		txn.VoidReason = input.Reason
		txn.VoidedAt = &now
		txn.VoidedBy = &input.StaffID
		txn.UpdatedAt = now
		if err := repo.Update(txn); err != nil {
			return ErrTransactionUpdateFailed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("交易作废成功", "transaction_id", input.TransactionID, "staff_id", input.StaffID)
	return s.posRepo.GetByID(input.TransactionID)
}

func firstCreditID(items []models.POSTransactionItem) uint {
	for _, item := range items {
		if item.SessionCreditID != nil {
			return *item.SessionCreditID
		}
	}
	return 0
}

// RemoveTransaction 移除交易记录
// 仅允许移除已作废的交易，保留台账流水
func (s *POSService) RemoveTransaction(tenantID, transactionID, staffID uint) error {
	if transactionID == 0 {
		return ErrTransactionInvalid
	}
	return s.posRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.posRepo.WithTx(tx)

		txn, err := repo.GetByIDForUpdate(transactionID)
		if err != nil {
			return err
		}
		if txn == nil || txn.TenantID != tenantID {
			return ErrTransactionNotFound
		}
		if txn.Status == constants.TransactionStatusRemoved {
			return ErrTransactionRemoved
		}
		if txn.Status != constants.TransactionStatusVoided {
			return ErrTransactionNotVoided
		}

		txn.Status = constants.TransactionStatusRemoved
		txn.UpdatedAt = time.Now()
		if err := repo.Update(txn); err != nil {
			return ErrTransactionUpdateFailed
		}
		return nil
	})
}

// GetTransaction 获取交易详情
func (s *POSService) GetTransaction(tenantID, id uint) (*models.POSTransaction, error) {
	txn, err := s.posRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if txn == nil || txn.TenantID != tenantID {
		return nil, ErrTransactionNotFound
	}
	return txn, nil
}

// GetTransactionByReceipt 根据小票号获取交易
func (s *POSService) GetTransactionByReceipt(tenantID uint, receiptNumber string) (*models.POSTransaction, error) {
	txn, err := s.posRepo.GetByReceiptNumber(tenantID, receiptNumber)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrTransactionNotFound
	}
	return txn, nil
}

// ListTransactions 获取交易列表
func (s *POSService) ListTransactions(filter repository.POSTransactionListFilter) ([]models.POSTransaction, int64, error) {
	return s.posRepo.List(filter)
}

// VoucherPreview 优惠券试算结果
type VoucherPreview struct {
	Subtotal models.Cents    `json:"subtotal"`
	Discount models.Cents    `json:"discount"`
	Total    models.Cents    `json:"total"`
	Voucher  *models.Voucher `json:"voucher"`
}

// PreviewVoucher 收银台结账前试算优惠，不占用使用次数
func (s *POSService) PreviewVoucher(tenantID, customerID uint, code string, inputs []CreateTransactionItemInput) (*VoucherPreview, error) {
	if tenantID == 0 {
		return nil, ErrTransactionInvalid
	}
	if len(inputs) == 0 {
		return nil, ErrTransactionEmptyItems
	}

	items, subtotal, err := s.buildItems(tenantID, inputs)
	if err != nil {
		return nil, err
	}

	discount, voucher, err := s.voucherSvc.ApplyVoucher(tenantID, subtotal, code, customerID, items)
	if err != nil {
		return nil, err
	}

	return &VoucherPreview{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal - discount,
		Voucher:  voucher,
	}, nil
}
