package security

import (
	"Airena/internal/model"
	"sort"

	"github.com/golang-jwt/jwt/v5"
)

// UserClaims 令牌负载，角色以布尔 claim 的形式平铺
type UserClaims struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Picture    string `json:"picture,omitempty"`
	Admin      bool   `json:"admin,omitempty"`
	Creator    bool   `json:"creator,omitempty"`
	SuperAdmin bool   `json:"superAdmin,omitempty"`
	jwt.RegisteredClaims
}

// Claims 角色集合，键为角色名
type Claims map[string]bool

// NewClaims 由角色名列表构造
func NewClaims(roles ...string) Claims {
	c := make(Claims, len(roles))
	for _, r := range roles {
		c[r] = true
	}
	return c
}

func (c Claims) Has(role string) bool {
	return c[role]
}

// With 返回一个合并了 role 的新集合，原集合不变
func (c Claims) With(role string) Claims {
	merged := make(Claims, len(c)+1)
	for k, v := range c {
		merged[k] = v
	}
	merged[role] = true
	return merged
}

// Names 返回值为 true 的角色名，按字典序
func (c Claims) Names() []string {
	names := make([]string, 0, len(c))
	for k, v := range c {
		if v {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// Principal 单次请求解析出的调用者身份
type Principal struct {
	SubjectID string
	Name      string
	Email     string
	Picture   string
	Claims    Claims
}

// NewPrincipal 主要用于构造测试身份
func NewPrincipal(subjectID string, roles ...string) *Principal {
	return &Principal{SubjectID: subjectID, Claims: NewClaims(roles...)}
}

func (p *Principal) Has(role string) bool {
	return p != nil && p.Claims.Has(role)
}

// HasAny 拥有任意一个角色即返回 true
func (p *Principal) HasAny(roles ...string) bool {
	for _, r := range roles {
		if p.Has(r) {
			return true
		}
	}
	return false
}

// ToPrincipal 令牌负载转为调用者身份
func (c *UserClaims) ToPrincipal() *Principal {
	claims := Claims{}
	if c.Admin {
		claims[model.RoleAdmin] = true
	}
	if c.Creator {
		claims[model.RoleCreator] = true
	}
	if c.SuperAdmin {
		claims[model.RoleSuperAdmin] = true
	}
	return &Principal{
		SubjectID: c.Subject,
		Name:      c.Name,
		Email:     c.Email,
		Picture:   c.Picture,
		Claims:    claims,
	}
}
