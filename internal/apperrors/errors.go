package apperrors

// 错误码
const (
	CodeCardNotFound    = 1001
	CodeCardUnavailable = 1002
	CodeBoardFull       = 1003
	CodeBoardIncomplete = 1004
	CodeNoSuggestion    = 1005
	CodeSearchGated     = 1006
)

// GameError 引擎错误
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrCardNotFound    = &GameError{Code: CodeCardNotFound, Message: "card does not exist"}
	ErrCardUnavailable = &GameError{Code: CodeCardUnavailable, Message: "card is already on the board or discarded"}
	ErrBoardFull       = &GameError{Code: CodeBoardFull, Message: "board already holds 5 cards"}
	ErrBoardIncomplete = &GameError{Code: CodeBoardIncomplete, Message: "board is not complete"}
	ErrNoSuggestion    = &GameError{Code: CodeNoSuggestion, Message: "no suggested play to commit"}
	ErrSearchGated     = &GameError{Code: CodeSearchGated, Message: "too many undealt cards to search"}
)
