package game

import (
	"encoding/json"
	"fmt"
)

// 消息类型（WebSocket 文本帧中的 "type" 字段）
const (
	MsgWelcome  = "welcome"  // server → client
	MsgGoInGame = "goInGame" // client → server，可靠有序
	MsgCommands = "commands" // client → server，尽力而为
	MsgSnapshot = "snapshot" // server → client，尽力而为
)

// Envelope 所有消息的外层结构
// 示例：{"type":"commands","payload":{"commands":[{"tick":12,"h":1,"v":0}]}}
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Welcome 连接建立后服务端分配的身份与时钟参数
type Welcome struct {
	NetworkID NetworkID `json:"networkId"`
	Session   string    `json:"session"`
	Tick      Tick      `json:"tick"`
	TickRate  int       `json:"tickRate"`
	MoveRate  float32   `json:"moveRate"`
}

// GoInGame 进入游戏请求，无内容
type GoInGame struct{}

// CommandBatch 客户端每 Tick 发送的最近若干条命令（冗余发送以抵抗丢包）
type CommandBatch struct {
	Commands []Command `json:"commands"`
}

// Encode 将消息编码为一帧
func Encode(msgType string, payload any) ([]byte, error) {
	env := Envelope{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", msgType, err)
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

// Decode 解析外层结构，payload 延迟到 Into 再解析
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return env, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return env, fmt.Errorf("decode envelope: missing type")
	}
	return env, nil
}

// Into 将 payload 解析到 v
func (e Envelope) Into(v any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}
