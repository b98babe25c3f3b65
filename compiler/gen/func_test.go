package gen

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamesOf(t *testing.T) {
	tests := []struct {
		in   string
		want Names
	}{
		{"sys_dict_data", Names{"sys_dict_data", "SysDictData", "sysDictData", "sys-dict-data"}},
		{"DictData", Names{"dict_data", "DictData", "dictData", "dict-data"}},
		{"user_id", Names{"user_id", "UserID", "userID", "user-id"}},
		{"UserID", Names{"user_id", "UserID", "userID", "user-id"}},
		{"HTTPServer", Names{"http_server", "HTTPServer", "httpServer", "http-server"}},
		{"api_url", Names{"api_url", "APIURL", "apiURL", "api-url"}},
		{"  order--no ", Names{"order_no", "OrderNo", "orderNo", "order-no"}},
		{"address2", Names{"address2", "Address2", "address2", "address2"}},
		{"id", Names{"id", "ID", "id", "id"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NamesOf(tt.in))
		})
	}
}

func TestToIdentifier_Idempotent(t *testing.T) {
	inputs := []string{
		"sys_dict_data", "DictData", "dictData", "user_id", "UserID", "HTTPServer",
		"create_time", "line_2", "v1_api", "dict-label", "  spaced name ", "IDs", "XMLHttpRequest",
		"point_x_y", "a_b_c", "ab_c_d", "x_1a", "http_sql", "id_s", "a_用户", "ID_UID_X",
	}
	for _, in := range inputs {
		for _, form := range forms {
			once := ToIdentifier(in, form)
			assert.Equal(t, once, ToIdentifier(once, form), "%s(%q)", form, in)
		}
	}
}

func TestToIdentifier_IdempotentRandom(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 20000 {
		in := randomIdentifier(r)
		for _, form := range forms {
			once := ToIdentifier(in, form)
			if !assert.Equal(t, once, ToIdentifier(once, form), "%s(%q)", form, in) {
				return
			}
		}
	}
}

func FuzzToIdentifier(f *testing.F) {
	for _, seed := range []string{"sys_dict_data", "point_x_y", "HTTPServer", "a_b_c", "IDs", "x_1a"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, in string) {
		for _, form := range forms {
			once := ToIdentifier(in, form)
			if twice := ToIdentifier(once, form); twice != once {
				t.Fatalf("%s(%q) = %q, then %q", form, in, once, twice)
			}
		}
	})
}

var forms = []Form{Snake, Pascal, Camel, Kebab}

// randomIdentifier returns a column-like name mixing short segments,
// separators, digits, acronyms and case changes.
func randomIdentifier(r *rand.Rand) string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	seps := []string{"_", "-", " ", ""}
	var b strings.Builder
	for range 1 + r.IntN(5) {
		if r.IntN(4) == 0 {
			b.WriteString([]string{"ID", "URL", "HTTP", "SQL", "UID", "s", "用户"}[r.IntN(7)])
		} else {
			for range 1 + r.IntN(3) {
				b.WriteByte(letters[r.IntN(len(letters))])
			}
		}
		b.WriteString(seps[r.IntN(len(seps))])
	}
	return b.String()
}

func TestToIdentifier_Empty(t *testing.T) {
	for _, form := range forms {
		assert.Empty(t, ToIdentifier("", form))
		assert.Empty(t, ToIdentifier("__", form))
	}
}

func TestNamer(t *testing.T) {
	n := NewNamer("sys_", "t", "")
	assert.Equal(t, "dict_data", n.Strip("sys_dict_data"))
	assert.Equal(t, "user", n.Strip("t_sys_user"))
	assert.Equal(t, "sys", n.Strip("sys"))
	assert.Equal(t, "config", n.Strip("sys_t_config"))
	assert.Equal(t, "DictData", n.ToIdentifier("sys_dict_data", Pascal))
	assert.Equal(t, "dict-data", n.Names("SysDictData").Kebab)

	// A name equal to a prefix is never stripped to nothing.
	assert.Equal(t, "t", NewNamer("t_").Strip("t"))
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "Users", plural("User"))
	assert.Equal(t, "Categories", plural("Category"))
	assert.Equal(t, "DictDataList", plural("DictData"))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Dict label", humanize("dict_label"))
	assert.Equal(t, "ID card", humanize("id_card"))
	assert.Equal(t, "", humanize("_"))
}

func TestReceiver(t *testing.T) {
	assert.Equal(t, "dd", receiver("DictData"))
	assert.Equal(t, "ddq", receiver("DictDataQuery"))
	assert.Equal(t, "u", receiver("[]User"))
	assert.Equal(t, "u", receiver("*User"))
}

func TestReserved(t *testing.T) {
	for _, name := range []string{"type", "func", "range", "string", "len", "nil", "any"} {
		assert.True(t, reserved(name), name)
	}
	for _, name := range []string{"dictLabel", "status", "id"} {
		assert.False(t, reserved(name), name)
	}
}

func TestFormString(t *testing.T) {
	assert.Equal(t, "snake", Snake.String())
	assert.Equal(t, "kebab", Kebab.String())
	assert.Equal(t, "form(?)", Form(9).String())
}
