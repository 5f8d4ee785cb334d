// Package derive 根据记录 ID 计算展示用的模拟属性（类别/日期/坐标/有无图片）。
// 不落库：同一个 ID 在服务端和客户端任何时刻都推导出同样的值。
package derive

import "unicode/utf16"

// Categories 固定顺序，index = |hash37(id)| % 4。
var Categories = []string{"civilian", "medical staff", "journalist", "other"}

// Gaza 大致范围
const (
	LatMin = 31.2
	LatMax = 31.6
	LonMin = 34.2
	LonMax = 34.6
)

// 死亡日期窗口起点：2023-10-07T00:00:00Z
const epochStartUnixMilli = int64(1696636800000)

// hashRun 逐字符 hash = hash*k + codeUnit，按 int32 回绕。
// 按 UTF-16 code unit 迭代，保证与前端 charCodeAt 的结果一致。
func hashRun(id string, k int32) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(id)) {
		h = h*k + int32(u)
	}
	return h
}

// abs64 先放宽到 int64 再取绝对值，避免 int32 最小值溢出
func abs64(v int32) int64 {
	a := int64(v)
	if a < 0 {
		a = -a
	}
	return a
}

// CategoryOf 返回 ID 对应的固定类别。
func CategoryOf(id string) string {
	h := hashRun(id, 37)
	return Categories[abs64(h)%int64(len(Categories))]
}

// DateFractionOf 返回 [0,1) 内的稳定比例，乘以时间窗口得到死亡日期。
func DateFractionOf(id string) float64 {
	h := hashRun(id, 33)
	return float64(abs64(h)%10000) / 10000
}

// DateOfDeathOf 在 [2023-10-07, now] 窗口内按稳定比例取一个时间戳（毫秒截断）。
// now 由调用方显式传入，方便测试。
func DateOfDeathOf(id string, nowUnixMilli int64) int64 {
	frac := DateFractionOf(id)
	span := float64(nowUnixMilli - epochStartUnixMilli)
	return epochStartUnixMilli + int64(frac*span)
}

// EpochStartUnixMilli 窗口起点。
func EpochStartUnixMilli() int64 { return epochStartUnixMilli }

// GeoOf 把两个独立的 hash 比例线性映射进固定经纬度框。
// 第二个比例取 hash 右移 3 位后再取模，保证与第一个不相关。
func GeoOf(id string) (lat, lon float64) {
	h := hashRun(id, 31)
	n1 := float64(absRem(h, 1000)) / 1000
	n2 := float64(absRem(h>>3, 1000)) / 1000
	lat = LatMin + n1*(LatMax-LatMin)
	lon = LonMin + n2*(LonMax-LonMin)
	return lat, lon
}

// absRem |v % m|，与 JS 的 Math.abs(v % m) 同语义（余数取被除数符号）。
func absRem(v int32, m int64) int64 {
	r := int64(v) % m
	if r < 0 {
		r = -r
	}
	return r
}

// HasImageOf hash 偶数位 → 有占位图。
func HasImageOf(id string) bool {
	return hashRun(id, 31)&1 == 0
}
