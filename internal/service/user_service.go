package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/example/gomarket/internal/apperr"
	"github.com/example/gomarket/internal/auth"
	"github.com/example/gomarket/internal/config"
	"github.com/example/gomarket/internal/datamodels/user"
)

type UserService struct {
	repo user.Repository
	jwt  *config.JWTConfig
}

func NewUserService(repo user.Repository, jwt *config.JWTConfig) *UserService {
	return &UserService{repo: repo, jwt: jwt}
}

// RegisterInput 注册请求体，地址和电话可选
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

// Register 注册用户并返回 JWT，邮箱重复返回 400
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*user.User, string, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, "", apperr.BadRequest("姓名、邮箱和密码不能为空。")
	}
	if in.Role == "" {
		in.Role = user.RoleBuyer
	}
	if !user.ValidRole(in.Role) || in.Role == user.RoleAdmin {
		return nil, "", apperr.BadRequest("角色无效，只能注册买家或卖家。")
	}
	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, "", apperr.BadRequest("该邮箱已被注册。")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	u := &user.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hashed),
		Role:     in.Role,
		Address:  in.Address,
		Phone:    in.Phone,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, "", err
	}
	token, err := auth.GenerateToken(s.jwt, u.ID, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login 校验邮箱密码并返回 JWT
func (s *UserService) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	if email == "" || password == "" {
		return nil, "", apperr.BadRequest("邮箱和密码不能为空。")
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperr.Unauthorized("邮箱或密码错误。")
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, "", apperr.Unauthorized("邮箱或密码错误。")
	}
	token, err := auth.GenerateToken(s.jwt, u.ID, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// UpdateMeInput 当前用户可改的字段，密码不走这里
type UpdateMeInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
	Password *string `json:"password"`
}

// UpdateMe 更新当前用户资料，改密码请走专门接口
func (s *UserService) UpdateMe(ctx context.Context, u *user.User, in UpdateMeInput) (*user.User, error) {
	if in.Password != nil {
		return nil, apperr.BadRequest("此接口不能修改密码，请使用修改密码接口。")
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil && *in.Email != u.Email {
		if _, err := s.repo.GetByEmail(ctx, *in.Email); err == nil {
			return nil, apperr.BadRequest("该邮箱已被注册。")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		u.Email = *in.Email
	}
	if in.Address != nil {
		u.Address = *in.Address
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdatePassword 修改当前用户密码，需先验证旧密码
func (s *UserService) UpdatePassword(ctx context.Context, u *user.User, current, next string) error {
	if current == "" || next == "" {
		return apperr.BadRequest("当前密码和新密码不能为空。")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(current)) != nil {
		return apperr.Unauthorized("当前密码不正确。")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return s.repo.Update(ctx, u)
}

// DeleteMe 注销当前账号
func (s *UserService) DeleteMe(ctx context.Context, u *user.User) error {
	return s.repo.Delete(ctx, u.ID)
}

// ListUsers 管理端用户列表，role 为空时返回全部
func (s *UserService) ListUsers(ctx context.Context, role string) ([]*user.User, error) {
	if role != "" {
		if !user.ValidRole(role) {
			return nil, apperr.BadRequest("角色无效。")
		}
		return s.repo.ListByRole(ctx, role)
	}
	return s.repo.ListAll(ctx)
}

// GetUser 按 ID 查用户
func (s *UserService) GetUser(ctx context.Context, id int64) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("用户不存在。")
		}
		return nil, err
	}
	return u, nil
}

// AdminUpdateUserInput 管理端可改的字段，密码不在其列
type AdminUpdateUserInput struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Role    string  `json:"role"`
}

// AdminUpdateUser 管理端改用户资料与角色，管理员不能降级自己
func (s *UserService) AdminUpdateUser(ctx context.Context, admin *user.User, id int64, in AdminUpdateUserInput) (*user.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Role != "" {
		if !user.ValidRole(in.Role) {
			return nil, apperr.BadRequest("角色无效。")
		}
		if admin.ID == u.ID && in.Role != user.RoleAdmin {
			return nil, apperr.Forbidden("不能降级自己的管理员权限。")
		}
		u.Role = in.Role
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil && *in.Email != u.Email {
		if _, err := s.repo.GetByEmail(ctx, *in.Email); err == nil {
			return nil, apperr.BadRequest("该邮箱已被注册。")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		u.Email = *in.Email
	}
	if in.Address != nil {
		u.Address = *in.Address
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// AdminDeleteUser 管理端删除用户，不能删除自己
func (s *UserService) AdminDeleteUser(ctx context.Context, admin *user.User, id int64) error {
	if admin.ID == id {
		return apperr.Forbidden("不能删除自己的账号。")
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
