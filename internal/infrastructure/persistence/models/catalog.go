package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// MaterialModel is the persistence model for a catalog material and its stock level
type MaterialModel struct {
	AggregateModel
	Code     string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name     string          `gorm:"type:varchar(200);not null"`
	Unit     string          `gorm:"type:varchar(20);not null"`
	Stock    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinStock decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RefPrice decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Category string          `gorm:"type:varchar(100);index"`
	Specs    string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (MaterialModel) TableName() string {
	return "materials"
}

// ToDomain converts the persistence model to a domain Material
func (m *MaterialModel) ToDomain() *catalog.Material {
	return &catalog.Material{
		BaseAggregateRoot: m.Root(),
		Code:              m.Code,
		Name:              m.Name,
		Unit:              m.Unit,
		Stock:             m.Stock,
		MinStock:          m.MinStock,
		RefPrice:          m.RefPrice,
		Category:          m.Category,
		Specs:             m.Specs,
	}
}

// MaterialModelFromDomain creates a persistence model from a domain Material
func MaterialModelFromDomain(mat *catalog.Material) *MaterialModel {
	m := &MaterialModel{
		Code:     mat.Code,
		Name:     mat.Name,
		Unit:     mat.Unit,
		Stock:    mat.Stock,
		MinStock: mat.MinStock,
		RefPrice: mat.RefPrice,
		Category: mat.Category,
		Specs:    mat.Specs,
	}
	m.SetRoot(mat.BaseAggregateRoot)
	return m
}

// ProjectModel is the persistence model for a construction project
type ProjectModel struct {
	AggregateModel
	Code      string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name      string                `gorm:"type:varchar(200);not null"`
	Location  string                `gorm:"type:varchar(500)"`
	ManagerID *uuid.UUID            `gorm:"type:uuid;index"`
	StartDate *time.Time            `gorm:"type:date"`
	EndDate   *time.Time            `gorm:"type:date"`
	Status    catalog.ProjectStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project
func (m *ProjectModel) ToDomain() *catalog.Project {
	return &catalog.Project{
		BaseAggregateRoot: m.Root(),
		Code:              m.Code,
		Name:              m.Name,
		Location:          m.Location,
		ManagerID:         m.ManagerID,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		Status:            m.Status,
	}
}

// ProjectModelFromDomain creates a persistence model from a domain Project
func ProjectModelFromDomain(p *catalog.Project) *ProjectModel {
	m := &ProjectModel{
		Code:      p.Code,
		Name:      p.Name,
		Location:  p.Location,
		ManagerID: p.ManagerID,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Status:    p.Status,
	}
	m.SetRoot(p.BaseAggregateRoot)
	return m
}

// SupplierModel is the persistence model for a supplier
type SupplierModel struct {
	AggregateModel
	Code        string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	CompanyName string          `gorm:"type:varchar(200);not null"`
	ContactName string          `gorm:"type:varchar(100)"`
	Email       string          `gorm:"type:varchar(200)"`
	Phone       string          `gorm:"type:varchar(50)"`
	Address     string          `gorm:"type:varchar(500)"`
	TaxCode     string          `gorm:"type:varchar(50)"`
	Rating      decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0"`
	UserID      *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier
func (m *SupplierModel) ToDomain() *catalog.Supplier {
	return &catalog.Supplier{
		BaseAggregateRoot: m.Root(),
		Code:              m.Code,
		CompanyName:       m.CompanyName,
		ContactName:       m.ContactName,
		Email:             m.Email,
		Phone:             m.Phone,
		Address:           m.Address,
		TaxCode:           m.TaxCode,
		Rating:            m.Rating,
		UserID:            m.UserID,
	}
}

// SupplierModelFromDomain creates a persistence model from a domain Supplier
func SupplierModelFromDomain(s *catalog.Supplier) *SupplierModel {
	m := &SupplierModel{
		Code:        s.Code,
		CompanyName: s.CompanyName,
		ContactName: s.ContactName,
		Email:       s.Email,
		Phone:       s.Phone,
		Address:     s.Address,
		TaxCode:     s.TaxCode,
		Rating:      s.Rating,
		UserID:      s.UserID,
	}
	m.SetRoot(s.BaseAggregateRoot)
	return m
}
