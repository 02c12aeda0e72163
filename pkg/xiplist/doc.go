// Package xiplist 提供大规模 IPv4/IPv6 网络前缀集合与近常数时间的包含查询。
//
// xiplist 维护一个按地址族分离的规范前缀集合（有序、无重叠、无重复），
// 并在其上构建分块二分索引：无论集合规模多大，单次查询都只需
// O(log chunks) + O(log chunkSize) 次比较。典型用途是访问控制
// （允许/拒绝列表）与路由过滤，前缀规模可达数万条。
//
// # 核心功能
//
//   - canonical.go: 规范集合构建（去重、吸收被包含前缀的平面扫描）
//   - index.go: 分块二分索引（均衡分块 + 两级二分查找，IPv4 uint32 快路径）
//   - list.go: [List] 类型——增删改查、快照发布、丢弃记录
//   - options.go: 功能选项（规范化、严格错误、日志、查询缓存）
//
// # 快速示例
//
//	l, _ := xiplist.New([]string{"10.0.0.0/8", "2001:db8::/32"})
//	cidr, ok, _ := l.Check("10.0.0.42")   // "10.0.0.0/8", true
//	_, ok, _ = l.Check("192.168.2.1")     // false
//
// # 规范集合
//
// 每次变更都会整体重建规范集合：先按 (起始地址升序, 前缀长度升序) 排序
// ——同一起点时更宽的网络优先——再从左到右扫描，起点落在已覆盖区间内
// 的条目作为冗余丢弃。重建后的集合满足严格不重叠不变量，这是二分查找
// 正确性的前提。
//
// # 丢弃记录
//
// 每个变更操作在入口重置丢弃记录，结束后可通过 [List.Discarded] 读取：
//
//   - [CauseInvalid]: 不可解析，或主机位非零且未开启规范化
//   - [CauseRedundant]: 合法但与保留前缀重复/被其完全包含
//
// 记录顺序为先 invalid（按遇到顺序）后 redundant（按扫描发现顺序）。
//
// # 并发模型
//
// 读操作无锁：索引快照通过 atomic.Pointer 原子发布，读端在调用开始时
// 取一次引用并全程使用，不会观察到撕裂状态。写操作由互斥锁串行化，
// 在旁侧完整构建新索引后一次性替换。锁只覆盖构建+发布，不阻塞读。
//
// # 错误处理
//
// 默认（非严格）模式下解析失败不会越过组件边界：变更路径记入丢弃记录，
// 查询路径按未命中处理。[WithStrictErrors] 开启后，失败以错误返回并
// 中止当前操作（批量操作在首个失败项处停止，不做部分应用）。
//
// # 查询缓存
//
// [WithLookupCache] 为每个索引快照附加一个 LRU 结果缓存
// （github.com/hashicorp/golang-lru/v2）。缓存随快照一起发布、
// 随快照一起废弃，因此无需失效协议。二分查找本身已是 O(log n)，
// 缓存仅对高度倾斜的热点查询流量有意义，默认关闭。
package xiplist
