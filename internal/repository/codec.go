package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"PenaltyHub/internal/interfaces"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// ErrInvalidDocument 文档结构与模型不符（多余字段、类型错误、校验失败）
var ErrInvalidDocument = errors.New("invalid document")

var validate = validator.New(validator.WithRequiredStructEnabled())

// 旧版 Python 服务写入的时间没有时区（datetime.utcnow().isoformat()），按 UTC 解析
var legacyTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

var timeType = reflect.TypeOf(time.Time{})

// checker 模型上的跨字段不变量
type checker interface {
	Check() error
}

// Encode 把模型转为文档。经过一次 JSON 往返，时间统一为 RFC3339 字符串
func Encode(v interface{}) (interfaces.Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("序列化文档失败: %w", err)
	}
	var doc interfaces.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("序列化文档失败: %w", err)
	}
	return doc, nil
}

// Decode 严格解码文档到模型：未知字段报错，随后做标签校验与不变量检查
func Decode(doc interfaces.Document, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		DecodeHook:  timeDecodeHook,
		Result:      out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]interface{}(doc)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if c, ok := out.(checker); ok {
		if err := c.Check(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	}
	return nil
}

func timeDecodeHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != timeType || from.Kind() != reflect.String {
		return data, nil
	}
	s := reflect.ValueOf(data).String()
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range legacyTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("无法解析时间 %q", s)
}
