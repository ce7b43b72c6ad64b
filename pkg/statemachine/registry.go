package statemachine

import "sync"

// Registry 记录某一类状态机声明的全部转换
// 守卫在声明时写入，状态图渲染只读
type Registry struct {
	mu          sync.RWMutex
	name        string
	initial     Value
	descriptors []*Descriptor
	index       map[string]*Descriptor
}

// NewRegistry 创建转换注册表
func NewRegistry(name string) *Registry {
	return &Registry{
		name:  name,
		index: make(map[string]*Descriptor),
	}
}

// NewRegistryWithInitial 创建带初始状态的注册表
func NewRegistryWithInitial(name string, initial Value) *Registry {
	r := NewRegistry(name)
	r.initial = initial
	return r
}

// Name 返回状态机名称
func (r *Registry) Name() string { return r.name }

// Initial 返回初始状态
func (r *Registry) Initial() (Value, bool) {
	return r.initial, r.initial.IsValid()
}

// Register 添加转换描述
func (r *Registry) Register(d *Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[d.name]; exists {
		return ErrDuplicateTransition
	}
	r.index[d.name] = d
	r.descriptors = append(r.descriptors, d)
	return nil
}

// Lookup 按名称查找转换描述
func (r *Registry) Lookup(name string) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.index[name]
	if !ok {
		return nil, ErrTransitionNotFound
	}
	return d, nil
}

// Descriptors 按声明顺序返回全部转换描述
func (r *Registry) Descriptors() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Descriptor(nil), r.descriptors...)
}

// Len 返回转换数量
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.descriptors)
}
