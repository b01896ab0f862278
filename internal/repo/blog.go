package repo

import (
	"context"
	"strings"

	"github.com/voxeterna/blog-api/internal/models"
)

func (r *Store) BlogBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	var blog models.Blog
	err := r.DB.WithContext(ctx).
		Preload("Categories").
		Preload("Tags").
		Preload("PostedBy", selectUserSummary).
		Where("slug = ?", strings.ToLower(slug)).
		First(&blog).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &blog, nil
}

func (r *Store) Blogs(ctx context.Context, offset, limit int) ([]models.Blog, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Blog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var blogs []models.Blog
	err := r.DB.WithContext(ctx).
		Preload("Categories").
		Preload("Tags").
		Preload("PostedBy", selectUserSummary).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&blogs).Error
	return blogs, total, err
}

func (r *Store) CreateBlog(ctx context.Context, b *models.Blog) error {
	return r.DB.WithContext(ctx).Create(b).Error
}

func (r *Store) SaveBlog(ctx context.Context, b *models.Blog) error {
	return r.DB.WithContext(ctx).Save(b).Error
}

func (r *Store) DeleteBlogBySlug(ctx context.Context, slug string) error {
	return r.DB.WithContext(ctx).Where("slug = ?", strings.ToLower(slug)).Delete(&models.Blog{}).Error
}

func (r *Store) ReplaceBlogTaxonomy(ctx context.Context, b *models.Blog, categories []models.Category, tags []models.Tag) error {
	if err := r.DB.WithContext(ctx).Model(b).Association("Categories").Replace(categories); err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Model(b).Association("Tags").Replace(tags)
}

func (r *Store) CategoriesByID(ctx context.Context, ids []uint) ([]models.Category, error) {
	var categories []models.Category
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error
	return categories, err
}

func (r *Store) TagsByID(ctx context.Context, ids []uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error
	return tags, err
}

func (r *Store) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *Store) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.DB.WithContext(ctx).Where("slug = ?", strings.ToLower(slug)).First(&category).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &category, nil
}

func (r *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *Store) DeleteCategoryBySlug(ctx context.Context, slug string) error {
	return r.DB.WithContext(ctx).Where("slug = ?", strings.ToLower(slug)).Delete(&models.Category{}).Error
}

func (r *Store) BlogsByCategory(ctx context.Context, category *models.Category) ([]models.Blog, error) {
	var blogs []models.Blog
	err := r.DB.WithContext(ctx).
		Preload("Categories").
		Preload("Tags").
		Preload("PostedBy", selectUserSummary).
		Joins("JOIN blog_categories ON blog_categories.blog_id = blogs.id").
		Where("blog_categories.category_id = ?", category.ID).
		Order("created_at DESC").
		Find(&blogs).Error
	return blogs, err
}

// RelatedBlogs returns other posts sharing at least one category.
func (r *Store) RelatedBlogs(ctx context.Context, blog *models.Blog, limit int) ([]models.Blog, error) {
	categoryIDs := make([]uint, 0, len(blog.Categories))
	for _, cat := range blog.Categories {
		categoryIDs = append(categoryIDs, cat.ID)
	}
	if len(categoryIDs) == 0 {
		return nil, nil
	}

	var blogs []models.Blog
	err := r.DB.WithContext(ctx).
		Preload("PostedBy", selectUserSummary).
		Joins("JOIN blog_categories ON blog_categories.blog_id = blogs.id").
		Where("blog_categories.category_id IN ?", categoryIDs).
		Where("blogs.id <> ?", blog.ID).
		Distinct().
		Order("created_at DESC").
		Limit(limit).
		Find(&blogs).Error
	return blogs, err
}

func (r *Store) Tags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.DB.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}

func (r *Store) TagBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	var tag models.Tag
	err := r.DB.WithContext(ctx).Where("slug = ?", strings.ToLower(slug)).First(&tag).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &tag, nil
}

func (r *Store) CreateTag(ctx context.Context, t *models.Tag) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *Store) DeleteTagBySlug(ctx context.Context, slug string) error {
	return r.DB.WithContext(ctx).Where("slug = ?", strings.ToLower(slug)).Delete(&models.Tag{}).Error
}

func (r *Store) BlogsByTag(ctx context.Context, tag *models.Tag) ([]models.Blog, error) {
	var blogs []models.Blog
	err := r.DB.WithContext(ctx).
		Preload("Categories").
		Preload("Tags").
		Preload("PostedBy", selectUserSummary).
		Joins("JOIN blog_tags ON blog_tags.blog_id = blogs.id").
		Where("blog_tags.tag_id = ?", tag.ID).
		Order("created_at DESC").
		Find(&blogs).Error
	return blogs, err
}
