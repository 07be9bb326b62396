package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Cents 统一金额类型，以整数分存储，避免浮点误差
// 序列化时输出 2 位小数的字符串（例如 "12.34"）
type Cents int64

// NewCentsFromDecimal 从 decimal 金额创建（四舍五入到分）
func NewCentsFromDecimal(amount decimal.Decimal) Cents {
	return Cents(amount.Shift(2).Round(0).IntPart())
}

// NewCentsFromString 从金额字符串创建（四舍五入到分）
func NewCentsFromString(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return NewCentsFromDecimal(d), nil
}

// Decimal 转换为 decimal 金额
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String 返回 2 位小数格式
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// MarshalJSON 统一输出 2 位小数的字符串
func (c Cents) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON 解析金额（字符串或数字，单位为元）
func (c *Cents) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := NewCentsFromString(s)
		if err != nil {
			return err
		}
		*c = v
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*c = NewCentsFromDecimal(decimal.NewFromFloat(f))
	return nil
}

// PercentOf 计算百分比金额，四舍五入到分
// percent 为整数百分比（例如 15 表示 85 折优惠中的 15%）
func (c Cents) PercentOf(percent int) Cents {
	if c <= 0 || percent <= 0 {
		return 0
	}
	return Cents((int64(c)*int64(percent) + 50) / 100)
}
