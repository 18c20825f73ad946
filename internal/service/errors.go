package service

import (
	"errors"
	"fmt"

	"PenaltyHub/internal/interfaces"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrValidation          = errors.New("validation failed")
	ErrTagAlreadyTaken     = errors.New("tag already taken")
	ErrAllocationExhausted = errors.New("tag allocation exhausted")
	ErrAvatarDisabled      = errors.New("avatar upload disabled")
)

// requestValidator 与 gin 绑定共用 binding 标签，服务层被直接调用时同样校验
var requestValidator = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	return v
}()

func validateRequest(req interface{}) error {
	if err := requestValidator.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

func validationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notFound 把存储层的 ErrDocumentNotFound 转为 ErrNotFound，其余错误原样返回
func notFound(err error, what string) error {
	if errors.Is(err, interfaces.ErrDocumentNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

// identityError 身份提供方错误映射
func identityError(err error) error {
	switch {
	case errors.Is(err, interfaces.ErrInvalidCredentials):
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	case errors.Is(err, interfaces.ErrEmailExists):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	case errors.Is(err, interfaces.ErrAccountNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return fmt.Errorf("身份提供方调用失败: %w", err)
}
