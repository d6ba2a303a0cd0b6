package journal

import (
	"database/sql/driver"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// LongText 是一个跨数据库兼容的长文本类型，用于保存启动失败的错误信息
// - MySQL: LONGTEXT
// - PostgreSQL / SQLite: TEXT
type LongText string

func (LongText) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "mysql" {
		return "LONGTEXT"
	}
	return "TEXT"
}

func (lt LongText) Value() (driver.Value, error) {
	return string(lt), nil
}

func (lt *LongText) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*lt = ""
	case string:
		*lt = LongText(v)
	case []byte:
		*lt = LongText(v)
	default:
		return fmt.Errorf("unsupported LongText scan type %T", value)
	}
	return nil
}

func (lt LongText) String() string {
	return string(lt)
}

// ==================== 时间戳辅助函数 ====================

// toTimestamp 将 time.Time 转换为 Unix 毫秒时间戳
func toTimestamp(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// fromTimestamp 将 Unix 毫秒时间戳转换为 time.Time
func fromTimestamp(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
