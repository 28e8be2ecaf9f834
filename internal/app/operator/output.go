package operator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

type jsonKey struct{}

func WithJSON(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, jsonKey{}, enabled)
}

// JSON true, если вывод должен быть машиночитаемым
func JSON(ctx context.Context) bool {
	enabled, _ := ctx.Value(jsonKey{}).(bool)
	return enabled
}

func PrintJSON(w io.Writer, raw json.RawMessage) error {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func Success(format string, args ...interface{}) {
	fmt.Fprintln(os.Stdout, color.GreenString("✓ ")+fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	fmt.Fprintln(os.Stdout, color.YellowString("⚠ ")+fmt.Sprintf(format, args...))
}

// Run выполняет запрос. В режиме JSON печатает сырой ответ и возвращает
// false, иначе разбирает ответ в out для человекочитаемого вывода.
func Run(ctx context.Context, method, path string, in, out interface{}) (bool, error) {
	c, err := FromContext(ctx)
	if err != nil {
		return false, err
	}
	if JSON(ctx) {
		var raw json.RawMessage
		if err := c.Do(ctx, method, path, in, &raw); err != nil {
			return false, err
		}
		return false, PrintJSON(os.Stdout, raw)
	}
	if err := c.Do(ctx, method, path, in, out); err != nil {
		return false, err
	}
	return true, nil
}
