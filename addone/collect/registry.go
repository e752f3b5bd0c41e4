package collect

import (
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]CollectPlugin{
		"default": &DefaultPlugin{},
	}
)

// Register 注册采集插件
func Register(name string, plugin CollectPlugin) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = plugin
}

// Get 获取指定平台的采集插件
func Get(name string) CollectPlugin {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if p, ok := registry[name]; ok {
		return p
	}
	return registry["default"]
}

// Has 平台是否已注册
func Has(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// Names 已注册的平台名称（排序）
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
