package errors

import "fmt"

const (
	UnknownError PaintBotErrorType = iota
	InvalidSyntaxError
	InvalidTypeError
	NoPhotoError
	NoPromptError
	NotAdminError
)

const (
	GenerationDisabledError PaintBotErrorType = 2000 + iota
	GenerationFailedError
	NoApiKeyError
	QuotaExceededError
)

var errMap = map[PaintBotErrorType]PaintBotError{
	UnknownError:            unknown,
	InvalidSyntaxError:      invalidSyntax,
	InvalidTypeError:        invalidType,
	NoPhotoError:            noPhoto,
	NoPromptError:           noPrompt,
	NotAdminError:           notAdmin,
	GenerationDisabledError: generationDisabled,
	GenerationFailedError:   generationFailed,
	NoApiKeyError:           noApiKey,
	QuotaExceededError:      quotaExceeded,
}

var (
	unknown            = PaintBotError{Err: fmt.Errorf("unknown error")}
	invalidSyntax      = PaintBotError{Err: fmt.Errorf("invalid syntax")}
	invalidType        = PaintBotError{Err: fmt.Errorf("invalid type")}
	noPhoto            = PaintBotError{Err: fmt.Errorf("no photo in message")}
	noPrompt           = PaintBotError{Err: fmt.Errorf("no prompt given")}
	notAdmin           = PaintBotError{Err: fmt.Errorf("user is not an admin")}
	generationDisabled = PaintBotError{Err: fmt.Errorf("image generation is disabled")}
	generationFailed   = PaintBotError{Err: fmt.Errorf("image generation failed")}
	noApiKey           = PaintBotError{Err: fmt.Errorf("no api key configured")}
	quotaExceeded      = PaintBotError{Err: fmt.Errorf("drawing quota exceeded")}
)

func Create(code PaintBotErrorType) PaintBotError {
	e := errMap[code]
	e.Code = code
	e.Message = e.Err.Error()
	return e
}
