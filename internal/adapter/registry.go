package adapter

import (
	"PenaltyHub/internal/config"
	"PenaltyHub/internal/interfaces"
	"fmt"

	"github.com/sirupsen/logrus"
)

// NewIdentityProvider 按配置中的 provider 名称创建身份提供方实例
func NewIdentityProvider(cfg *config.IdentityConfig, store interfaces.DocumentStore, logger *logrus.Logger) (interfaces.IdentityProvider, error) {
	registered := ListFactories()
	logger.WithField("factory_providers", registered).Debug("adapter包中已注册的身份提供方")

	factory, ok := GetFactory(cfg.Provider)
	if !ok {
		return nil, fmt.Errorf("身份提供方%s未注册（已注册：%v）", cfg.Provider, registered)
	}
	provider, err := factory(cfg, store, logger)
	if err != nil {
		return nil, fmt.Errorf("初始化身份提供方%s失败: %w", cfg.Provider, err)
	}
	if provider.GetName() != cfg.Provider {
		logger.WithFields(logrus.Fields{
			"config_provider":  cfg.Provider,
			"adapter_provider": provider.GetName(),
		}).Warn("身份提供方名称与配置不匹配")
	}
	logger.WithField("provider", provider.GetName()).Info("身份提供方初始化成功")
	return provider, nil
}
