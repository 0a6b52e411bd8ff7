package models

import "errors"

// 各項操作可能回傳的錯誤
var (
	ErrAuthFailure       = errors.New("帳號或密碼錯誤")
	ErrDuplicateLogin    = errors.New("帳號已被使用")
	ErrDuplicateItem     = errors.New("餐點名稱已存在")
	ErrUnknownItem       = errors.New("菜單上沒有此餐點")
	ErrUnknownOrderItem  = errors.New("此訂單沒有這項餐點")
	ErrInvalidTransition = errors.New("製作進度不能倒退")
	ErrUnauthorized      = errors.New("沒有權限")
	ErrOrderPaid         = errors.New("訂單已付款，無法修改")
)
