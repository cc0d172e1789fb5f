package server

import (
	"errors"
	"fmt"
)

// 起動処理のステップ
const (
	StepSocket     = "socket"
	StepSetsockopt = "setsockopt"
	StepBind       = "bind"
	StepListen     = "listen"
)

// ErrAlreadyStarted は2回目のStartで返される
var ErrAlreadyStarted = errors.New("サーバーは既に起動しています")

// StartError は起動処理のどのステップで失敗したかを示す
type StartError struct {
	Step string
	Err  error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("%s に失敗: %v", e.Step, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}
