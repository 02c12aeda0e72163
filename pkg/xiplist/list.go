package xiplist

import (
	"fmt"
	"log/slog"
	"math/big"
	"net/netip"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/omeyang/xiplist/pkg/xcidr"
)

// DiscardCause 表示输入被丢弃的原因。
type DiscardCause uint8

const (
	// CauseInvalid 表示输入不可解析，或主机位非零且未开启规范化。
	CauseInvalid DiscardCause = iota + 1
	// CauseRedundant 表示输入合法但与保留前缀完全重复或被其包含。
	CauseRedundant
)

// String 返回丢弃原因的字符串表示。
func (c DiscardCause) String() string {
	switch c {
	case CauseInvalid:
		return "invalid"
	case CauseRedundant:
		return "redundant"
	default:
		return "unknown"
	}
}

// Discarded 是一条丢弃记录：被拒绝的输入及其原因。
// Invalid 记录保留调用方的原始文本，Redundant 记录规范 CIDR 文本。
type Discarded struct {
	Input string
	Cause DiscardCause
}

// Result 是一次变更操作的结果。
type Result struct {
	// Added 是本次新进入规范集合的前缀数。
	Added int
	// Removed 是本次从规范集合移除的前缀数。
	Removed int
	// Discarded 是本次被丢弃的输入，先 invalid 后 redundant，
	// 各自按发现顺序排列。
	Discarded []Discarded
}

// Stats 描述当前索引快照的规模。
type Stats struct {
	IPv4        int
	IPv6        int
	IPv4Chunks  int
	IPv6Chunks  int
	Fingerprint uint64
}

// cachedResult 是查询缓存的值：命中的 CIDR 文本与命中标记。
// 未命中结果同样缓存（负缓存）。
type cachedResult struct {
	text string
	ok   bool
}

// snapshot 是一次变更产出的完整不可变索引。
// 读端通过 atomic.Pointer 取一次引用后全程使用，写端整体替换，
// 因此读操作永远不会观察到部分重建的状态。
type snapshot struct {
	v4          familyIndex
	v6          familyIndex
	discarded   []Discarded
	fingerprint uint64
	cache       *lru.Cache[netip.Addr, cachedResult]
}

// lookup 在快照内解析地址族并执行两级二分查找。
// addr 必须已 Unmap。
func (s *snapshot) lookup(addr netip.Addr) (string, bool) {
	if s.cache != nil {
		if v, ok := s.cache.Get(addr); ok {
			return v.text, v.ok
		}
	}
	var text string
	var ok bool
	if addr.Is4() {
		text, ok = s.v4.lookup(addr)
	} else {
		text, ok = s.v6.lookup(addr)
	}
	if s.cache != nil {
		s.cache.Add(addr, cachedResult{text: text, ok: ok})
	}
	return text, ok
}

// size 返回快照内两族条目的总数。
func (s *snapshot) size() int {
	return len(s.v4.entries) + len(s.v6.entries)
}

// List 是支持近常数时间包含查询的 IPv4/IPv6 前缀集合。
//
// 必须通过 [New] 创建，零值不可用。所有方法都是并发安全的：
// 查询无锁（原子快照），变更互斥串行。
type List struct {
	mu   sync.Mutex
	cur  atomic.Pointer[snapshot]
	opts options
}

// New 从一批前缀字符串创建 List。
// 非严格模式下无效输入进入丢弃记录而不报错；
// 严格模式（[WithStrictErrors]）下首个无效输入即返回错误。
func New(cidrs []string, opts ...Option) (*List, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	l := &List{opts: o}
	l.cur.Store(l.newSnapshot(familyIndex{}, familyIndex{}, nil))
	if _, err := l.Replace(cidrs); err != nil {
		return nil, err
	}
	return l, nil
}

// newSnapshot 组装快照：计算指纹，按配置附加新的查询缓存。
func (l *List) newSnapshot(v4, v6 familyIndex, disc []Discarded) *snapshot {
	s := &snapshot{
		v4:          v4,
		v6:          v6,
		discarded:   disc,
		fingerprint: fingerprintOf(v4.entries, v6.entries),
	}
	if l.opts.cacheSize > 0 {
		// size > 0 时 lru.New 不会失败。
		s.cache, _ = lru.New[netip.Addr, cachedResult](l.opts.cacheSize)
	}
	return s
}

// carryOver 复用当前索引、仅替换丢弃记录的快照。
// 用于本次变更没有改变规范集合的场景（集合未变，缓存仍然有效）。
func carryOver(cur *snapshot, disc []Discarded) *snapshot {
	return &snapshot{
		v4:          cur.v4,
		v6:          cur.v6,
		discarded:   disc,
		fingerprint: cur.fingerprint,
		cache:       cur.cache,
	}
}

// fingerprintOf 计算规范集合的 xxhash 指纹，供外部做廉价的变更探测。
func fingerprintOf(v4, v6 []entry) uint64 {
	d := xxhash.New()
	for _, e := range v4 {
		_, _ = d.WriteString(e.text)
		_, _ = d.WriteString("\n")
	}
	for _, e := range v6 {
		_, _ = d.WriteString(e.text)
		_, _ = d.WriteString("\n")
	}
	return d.Sum64()
}

// parseBatch 逐项解析/校验/规范化输入。
// 空白项跳过；非严格模式下失败项记为 invalid 并继续，
// 严格模式下首个失败即返回错误（调用方不做部分应用）。
func (l *List) parseBatch(inputs []string) (cands []entry, invalid []Discarded, err error) {
	for _, raw := range inputs {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		p, perr := xcidr.ParsePrefix(s, l.opts.normalize)
		if perr != nil {
			if l.opts.strict {
				return nil, nil, perr
			}
			l.opts.logger.Debug("discard invalid cidr",
				slog.String("input", s), slog.String("reason", perr.Error()))
			invalid = append(invalid, Discarded{Input: s, Cause: CauseInvalid})
			continue
		}
		e := newEntry(p)
		if e.text != s {
			l.opts.logger.Debug("normalized cidr",
				slog.String("input", s), slog.String("cidr", e.text))
		}
		cands = append(cands, e)
	}
	return cands, invalid, nil
}

// Add 向集合添加一个 IP 地址或 CIDR。
func (l *List) Add(cidr string) (Result, error) {
	return l.addBatch([]string{cidr})
}

// AddAll 向集合添加一批 IP 地址或 CIDR。
func (l *List) AddAll(cidrs []string) (Result, error) {
	return l.addBatch(cidrs)
}

// AddRange 向集合添加一个 IP 范围，支持 [xcidr.ParseRange] 的全部格式
// （单 IP / CIDR / IPv4 掩码 / "start-end" 显式范围）。
// 范围被分解为最少数量的 CIDR 块后进入正常的添加管线。
func (l *List) AddRange(s string) (Result, error) {
	r, err := xcidr.ParseRange(s)
	if err != nil {
		if l.opts.strict {
			return Result{}, err
		}
		l.opts.logger.Debug("discard invalid range",
			slog.String("input", s), slog.String("reason", err.Error()))
		invalid := []Discarded{{Input: strings.TrimSpace(s), Cause: CauseInvalid}}
		return l.addCandidates(nil, invalid), nil
	}
	prefixes := xcidr.RangeToPrefixes(r)
	cands := make([]entry, 0, len(prefixes))
	for _, p := range prefixes {
		cands = append(cands, newEntry(p))
	}
	return l.addCandidates(cands, nil), nil
}

// addBatch 是 Add/AddAll 的公共实现。
func (l *List) addBatch(inputs []string) (Result, error) {
	cands, invalid, err := l.parseBatch(inputs)
	if err != nil {
		return Result{}, err
	}
	return l.addCandidates(cands, invalid), nil
}

// addCandidates 将候选条目与现有集合合并重建并发布。
// 丢弃记录在此被整体重置为本次调用的 invalid + redundant。
func (l *List) addCandidates(cands []entry, invalid []Discarded) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.cur.Load()
	if len(cands) == 0 {
		l.cur.Store(carryOver(cur, invalid))
		return Result{Discarded: invalid}
	}

	// 已存条目排在候选之前：稳定排序下完全相同的 (start, 长度)
	// 由已存条目胜出（first-kept-wins）。
	v4work := make([]entry, 0, len(cur.v4.entries))
	v6work := make([]entry, 0, len(cur.v6.entries))
	v4work = append(v4work, cur.v4.entries...)
	v6work = append(v6work, cur.v6.entries...)
	for _, e := range cands {
		if e.start.Is4() {
			v4work = append(v4work, e)
		} else {
			v6work = append(v6work, e)
		}
	}

	oldTexts := make(map[string]struct{}, cur.size())
	for _, e := range cur.v4.entries {
		oldTexts[e.text] = struct{}{}
	}
	for _, e := range cur.v6.entries {
		oldTexts[e.text] = struct{}{}
	}

	keptV4, redV4 := buildCanonical(v4work)
	keptV6, redV6 := buildCanonical(v6work)

	disc := invalid
	for _, e := range redV4 {
		disc = append(disc, Discarded{Input: e.text, Cause: CauseRedundant})
	}
	for _, e := range redV6 {
		disc = append(disc, Discarded{Input: e.text, Cause: CauseRedundant})
	}

	added := 0
	for _, e := range keptV4 {
		if _, ok := oldTexts[e.text]; !ok {
			added++
		}
	}
	for _, e := range keptV6 {
		if _, ok := oldTexts[e.text]; !ok {
			added++
		}
	}

	next := l.newSnapshot(
		buildFamilyIndex(xcidr.F4, keptV4),
		buildFamilyIndex(xcidr.F6, keptV6),
		disc,
	)
	l.cur.Store(next)
	l.logRebuild(next, len(disc))
	return Result{Added: added, Discarded: disc}
}

// Remove 从集合移除一个 IP 地址或 CIDR。
// 不存在的条目静默忽略；严格模式下返回 [ErrPrefixNotFound]。
func (l *List) Remove(cidr string) (Result, error) {
	return l.removeBatch([]string{cidr})
}

// RemoveAll 从集合移除一批 IP 地址或 CIDR。
func (l *List) RemoveAll(cidrs []string) (Result, error) {
	return l.removeBatch(cidrs)
}

// removeBatch 按精确 (start, 前缀长度) 匹配过滤集合。
// 输入经过与添加相同的解析/规范化路径，因此开启规范化时
// "10.10.10.10/8" 能够移除已存的 10.0.0.0/8。
// 移除不会引入新的重叠，只需重建分块索引，不需要重新扫描。
func (l *List) removeBatch(inputs []string) (Result, error) {
	targets := make(map[netip.Prefix]string, len(inputs))
	hits := make(map[netip.Prefix]int, len(inputs))
	var disc []Discarded
	for _, raw := range inputs {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		p, err := xcidr.ParsePrefix(s, l.opts.normalize)
		if err != nil {
			if l.opts.strict {
				return Result{}, err
			}
			l.opts.logger.Debug("discard invalid removal",
				slog.String("input", s), slog.String("reason", err.Error()))
			disc = append(disc, Discarded{Input: s, Cause: CauseInvalid})
			continue
		}
		if _, ok := targets[p]; !ok {
			targets[p] = s
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.cur.Load()
	filter := func(src []entry) []entry {
		kept := make([]entry, 0, len(src))
		for _, e := range src {
			if _, ok := targets[e.prefix]; ok {
				hits[e.prefix]++
				continue
			}
			kept = append(kept, e)
		}
		return kept
	}
	v4 := filter(cur.v4.entries)
	v6 := filter(cur.v6.entries)

	if l.opts.strict {
		for p, input := range targets {
			if hits[p] == 0 {
				// 不做部分应用：不发布过滤结果。
				return Result{}, fmt.Errorf("%w: %s", ErrPrefixNotFound, input)
			}
		}
	}

	removed := cur.size() - len(v4) - len(v6)
	if removed == 0 {
		l.cur.Store(carryOver(cur, disc))
		return Result{Discarded: disc}, nil
	}

	next := l.newSnapshot(
		buildFamilyIndex(xcidr.F4, v4),
		buildFamilyIndex(xcidr.F6, v6),
		disc,
	)
	l.cur.Store(next)
	l.logRebuild(next, len(disc))
	return Result{Removed: removed, Discarded: disc}, nil
}

// Replace 用一批新的前缀整体替换集合，等价于 Clear 后 AddAll。
func (l *List) Replace(cidrs []string) (Result, error) {
	cands, invalid, err := l.parseBatch(cidrs)
	if err != nil {
		return Result{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var v4work, v6work []entry
	for _, e := range cands {
		if e.start.Is4() {
			v4work = append(v4work, e)
		} else {
			v6work = append(v6work, e)
		}
	}
	keptV4, redV4 := buildCanonical(v4work)
	keptV6, redV6 := buildCanonical(v6work)

	disc := invalid
	for _, e := range redV4 {
		disc = append(disc, Discarded{Input: e.text, Cause: CauseRedundant})
	}
	for _, e := range redV6 {
		disc = append(disc, Discarded{Input: e.text, Cause: CauseRedundant})
	}

	next := l.newSnapshot(
		buildFamilyIndex(xcidr.F4, keptV4),
		buildFamilyIndex(xcidr.F6, keptV6),
		disc,
	)
	l.cur.Store(next)
	l.logRebuild(next, len(disc))
	return Result{Added: len(keptV4) + len(keptV6), Discarded: disc}, nil
}

// Clear 清空集合、索引与丢弃记录。
func (l *List) Clear() Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.cur.Load()
	removed := cur.size()
	l.cur.Store(l.newSnapshot(familyIndex{}, familyIndex{}, nil))
	l.opts.logger.Debug("cleared list", slog.Int("removed", removed))
	return Result{Removed: removed}
}

// logRebuild 输出重建统计。
func (l *List) logRebuild(s *snapshot, discarded int) {
	l.opts.logger.Debug("rebuilt index",
		slog.Int("ipv4", len(s.v4.entries)),
		slog.Int("ipv6", len(s.v6.entries)),
		slog.Int("ipv4_chunks", s.v4.numChunks()),
		slog.Int("ipv6_chunks", s.v6.numChunks()),
		slog.Int("discarded", discarded),
		slog.Uint64("fingerprint", s.fingerprint),
	)
}

// Check 查询文本地址是否被集合覆盖，命中时返回覆盖前缀的规范 CIDR 文本。
// 非严格模式下不可解析的输入按未命中处理；严格模式下返回解析错误。
func (l *List) Check(ipaddr string) (string, bool, error) {
	addr, err := xcidr.ParseAddr(ipaddr)
	if err != nil {
		if l.opts.strict {
			return "", false, err
		}
		return "", false, nil
	}
	text, ok := l.CheckAddr(addr)
	return text, ok, nil
}

// CheckAddr 查询 [netip.Addr] 是否被集合覆盖。
// IPv4-mapped IPv6 地址按 IPv4 处理；无效地址按未命中处理。
func (l *List) CheckAddr(addr netip.Addr) (string, bool) {
	if !addr.IsValid() {
		return "", false
	}
	return l.cur.Load().lookup(addr.Unmap())
}

// CheckBigInt 查询整数形式的地址。IPv4 与 IPv6 是独立的整数域，
// 调用方必须显式给出地址族；越界整数按未命中处理（严格模式下报错）。
func (l *List) CheckBigInt(v *big.Int, fam xcidr.Family) (string, bool, error) {
	addr, err := xcidr.AddrFromBigInt(v, fam)
	if err != nil {
		if l.opts.strict {
			return "", false, err
		}
		return "", false, nil
	}
	text, ok := l.CheckAddr(addr)
	return text, ok, nil
}

// Contains 报告集合中是否存在与 cidr 精确相同 (start, 前缀长度) 的条目。
// 这是精确成员判断，不是覆盖判断；输入走与添加相同的解析/规范化路径。
func (l *List) Contains(cidr string) bool {
	p, err := xcidr.ParsePrefix(cidr, l.opts.normalize)
	if err != nil {
		return false
	}
	cur := l.cur.Load()
	fi := &cur.v6
	if p.Addr().Is4() {
		fi = &cur.v4
	}
	_, found := slices.BinarySearchFunc(fi.entries, newEntry(p), cmpEntry)
	return found
}

// Prefixes 返回当前规范集合的 CIDR 文本副本，IPv4 在前 IPv6 在后，
// 各族内按起始地址升序。返回值与内部存储无别名关系。
func (l *List) Prefixes() []string {
	cur := l.cur.Load()
	out := make([]string, 0, cur.size())
	for _, e := range cur.v4.entries {
		out = append(out, e.text)
	}
	for _, e := range cur.v6.entries {
		out = append(out, e.text)
	}
	return out
}

// Len 返回当前保留的前缀总数。
func (l *List) Len() int {
	return l.cur.Load().size()
}

// Discarded 返回最近一次变更操作的丢弃记录副本。
// 记录在每次变更入口被整体重置，不跨调用累积。
func (l *List) Discarded() []Discarded {
	cur := l.cur.Load()
	return slices.Clone(cur.discarded)
}

// Fingerprint 返回当前规范集合的 xxhash 指纹。
// 集合内容相同则指纹相同，可用于外部的廉价变更探测。
func (l *List) Fingerprint() uint64 {
	return l.cur.Load().fingerprint
}

// Stats 返回当前索引快照的规模统计。
func (l *List) Stats() Stats {
	cur := l.cur.Load()
	return Stats{
		IPv4:        len(cur.v4.entries),
		IPv6:        len(cur.v6.entries),
		IPv4Chunks:  cur.v4.numChunks(),
		IPv6Chunks:  cur.v6.numChunks(),
		Fingerprint: cur.fingerprint,
	}
}
