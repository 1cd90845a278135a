package model

import (
	"database/sql/driver"
	"strings"

	"github.com/shopspring/decimal"
)

// Money 金额类型，定点小数，统一保留2位（四舍五入）
type Money struct {
	decimal.Decimal
}

// Zero 零金额
var Zero = Money{decimal.Zero}

// NewMoney 从字符串创建金额
func NewMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, err
	}
	return Money{d}, nil
}

// MustMoney 从字符串创建金额，解析失败时panic（仅用于常量和测试）
func MustMoney(s string) Money {
	m, err := NewMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MoneyFromFloat 从浮点数创建金额
func MoneyFromFloat(f float64) Money {
	return Money{decimal.NewFromFloat(f)}
}

// Round2 保留2位小数，四舍五入（half-up）
// 账务计算的每一步中间结果都必须经过Round2，舍入顺序是对账契约的一部分
func (m Money) Round2() Money {
	return Money{m.Decimal.Round(2)}
}

// Add 加法
func (m Money) Add(o Money) Money {
	return Money{m.Decimal.Add(o.Decimal)}
}

// Sub 减法
func (m Money) Sub(o Money) Money {
	return Money{m.Decimal.Sub(o.Decimal)}
}

// Mul 乘法
func (m Money) Mul(o Money) Money {
	return Money{m.Decimal.Mul(o.Decimal)}
}

// MulInt 乘以整数（用于按笔数计费）
func (m Money) MulInt(n int64) Money {
	return Money{m.Decimal.Mul(decimal.NewFromInt(n))}
}

// Div 除法
func (m Money) Div(o Money) Money {
	return Money{m.Decimal.Div(o.Decimal)}
}

// FloorZero 负数归零，账务金额不允许为负
func (m Money) FloorZero() Money {
	if m.Decimal.IsNegative() {
		return Zero
	}
	return m
}

// LessThan 小于
func (m Money) LessThan(o Money) bool {
	return m.Decimal.LessThan(o.Decimal)
}

// GreaterThan 大于
func (m Money) GreaterThan(o Money) bool {
	return m.Decimal.GreaterThan(o.Decimal)
}

// Equal 相等
func (m Money) Equal(o Money) bool {
	return m.Decimal.Equal(o.Decimal)
}

// Float64 转浮点数（仅用于响应序列化）
func (m Money) Float64() float64 {
	f, _ := m.Decimal.Float64()
	return f
}

// MarshalJSON 序列化为数字而非字符串，对齐前端展示
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// UnmarshalJSON 兼容数字和字符串两种形式
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	m.Decimal = d
	return nil
}

// Value 实现 driver.Valuer
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Value()
}

// Scan 实现 sql.Scanner
func (m *Money) Scan(value interface{}) error {
	return m.Decimal.Scan(value)
}

// GormDataType gorm 列类型
func (Money) GormDataType() string {
	return "numeric(18,2)"
}
