package errors

import "encoding/json"

type PaintBotErrorType int

func New(code PaintBotErrorType, err error) PaintBotError {
	return PaintBotError{Err: err, Message: err.Error(), Code: code}
}

type PaintBotError struct {
	Message string `json:"message"`
	Err     error
	Code    PaintBotErrorType `json:"code"`
}

func (e PaintBotError) Error() string {
	j, err := json.Marshal(&e)
	if err != nil {
		return e.Message
	}
	return string(j)
}
