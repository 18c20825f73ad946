// internal/adapter/adapter.go
package adapter

import (
	"PenaltyHub/internal/config"
	"PenaltyHub/internal/interfaces"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Factory 身份提供方工厂函数签名
// 入参：身份配置、文档存储（local 模式使用）、日志实例
type Factory func(cfg *config.IdentityConfig, store interfaces.DocumentStore, logger *logrus.Logger) (interfaces.IdentityProvider, error)

// ========== 全局工厂函数注册表 ==========
var (
	registryMu      sync.RWMutex
	factoryRegistry = make(map[string]Factory)
)

// Register 供适配器init函数调用，注册工厂函数
func Register(name string, factory Factory) {
	if factory == nil {
		panic(fmt.Sprintf("身份提供方%s的工厂函数不能为nil", name))
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := factoryRegistry[name]; exists {
		logrus.Warnf("身份提供方%s已注册，将覆盖原有实现", name)
	}
	factoryRegistry[name] = factory
}

// GetFactory 获取指定身份提供方的工厂函数
func GetFactory(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := factoryRegistry[name]
	return factory, ok
}

// ListFactories 列出所有已注册的身份提供方
func ListFactories() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(factoryRegistry))
	for n := range factoryRegistry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
