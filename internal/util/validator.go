package util

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"cred-entry/internal/models"
)

// maxCredit 单笔存款上限
var maxCredit = decimal.NewFromInt(10_000_000)

// ValidateCredit 验证金额（必须为正数，最多两位小数，且不超过上限）
func ValidateCredit(credit decimal.Decimal) error {
	if !credit.IsPositive() {
		return fmt.Errorf("credit must be positive, got %s", credit.String())
	}
	if credit.GreaterThanOrEqual(maxCredit) {
		return fmt.Errorf("credit too large, got %s", credit.String())
	}
	if !credit.Equal(credit.Round(2)) {
		return fmt.Errorf("credit has more than two decimal places, got %s", credit.String())
	}
	return nil
}

// ValidateTimestamp 验证时间格式（必须为 YYYY-MM-DD HH:MM:SS）
func ValidateTimestamp(ts string) error {
	if ts == "" {
		return fmt.Errorf("timestamp is empty")
	}
	if _, err := time.Parse(models.TimestampLayout, ts); err != nil {
		return fmt.Errorf("invalid timestamp format: %w", err)
	}
	return nil
}

// ValidateCashier 验证收银员必须在固定名单内
func ValidateCashier(name string) error {
	if name == "" {
		return fmt.Errorf("cashier is empty")
	}
	if !models.IsCashier(name) {
		return fmt.Errorf("unknown cashier %q", name)
	}
	return nil
}

// ValidateBank 验证银行必须在固定名单内
func ValidateBank(name string) error {
	if name == "" {
		return fmt.Errorf("bank is empty")
	}
	if !models.IsBank(name) {
		return fmt.Errorf("unknown bank %q", name)
	}
	return nil
}

// ValidateEntry 在写入账本前检查一条记录的所有字段
func ValidateEntry(e models.Entry) error {
	if err := ValidateTimestamp(e.Timestamp); err != nil {
		return err
	}
	if err := ValidateCashier(e.Cashier); err != nil {
		return err
	}
	if err := ValidateBank(e.Bank); err != nil {
		return err
	}
	return ValidateCredit(e.Credit)
}
