package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// addEdge 插入一条关联行；已存在时不报错，返回 false
func addEdge(db *gorm.DB, edge interface{}) (bool, error) {
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(edge)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// removeEdge 删除一条关联行；不存在时返回 false
func removeEdge(db *gorm.DB, edge interface{}) (bool, error) {
	result := db.Where(edge).Delete(edge)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// hasEdge 关联行是否存在
func hasEdge(db *gorm.DB, edge interface{}) (bool, error) {
	var count int64
	err := db.Model(edge).Where(edge).Count(&count).Error
	return count > 0, err
}
