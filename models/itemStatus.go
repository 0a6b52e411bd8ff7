package models

import (
	"time"

	"gorm.io/gorm"
)

type ItemState string

const (
	StateNotStarted ItemState = "NotStarted"
	StateInProgress ItemState = "InProgress"
	StateComplete   ItemState = "Complete"
)

// 製作進度順序，只能往前不能倒退
var stateRanks = map[ItemState]int{
	StateNotStarted: 1,
	StateInProgress: 2,
	StateComplete:   3,
}

// 檢查是否為合法的製作進度
func ParseItemState(s string) (ItemState, bool) {
	state := ItemState(s)
	_, ok := stateRanks[state]
	return state, ok
}

// 檢查能否從目前進度轉移至新進度，允許重複設定相同進度
func (s ItemState) CanAdvanceTo(next ItemState) bool {
	return stateRanks[next] >= stateRanks[s]
}

type ItemStatus struct {
	gorm.Model
	OrderID  uint   `gorm:"uniqueIndex:idx_order_item;not null"`
	ItemName string `gorm:"uniqueIndex:idx_order_item;size:100;not null"`
	//點餐當下的單價，菜單之後改價或下架不影響歷史訂單
	Price       uint `gorm:"not null"`
	Status      ItemState
	LastUpdated time.Time
	Comments    string
}
