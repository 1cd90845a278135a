package logic

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate 行级排他锁
// 读聚合再写从属记录的路径必须锁住读到的行直到事务结束，防止丢失更新和双花
// sqlite（单写连接，测试用）不支持 FOR UPDATE，跳过
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
