// Package autoload 以空白匯入的方式註冊所有內建的 Channels。
// main.go 只需要 `_ "toktok/pkg/channels/autoload"` 即可啟用全部通道。
package autoload

import (
	_ "toktok/pkg/channels/telegram"
	_ "toktok/pkg/channels/web"
)
