// Package codec 定义缓存条目与类型化对象之间的编解码契约。
//
// 缓存层只消费 Codec 接口：Encode 产出带 Content-Type 与长度的 Payload，
// Decode 需要调用方提供目标指针，从而在调用点确定解码形状。内置 json/yaml/toml/raw
// 四种实现在 init() 中注册，其它实现可通过 Register 追加。
package codec
