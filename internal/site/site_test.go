package site

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maltedev/price-registry-scraper/internal/models"
)

func TestLocateControlIsPositional(t *testing.T) {
	assert.Equal(t, "(//div[contains(@class, 'MuiSelect-select')])[1]", LocateControl(RolePeriod).Value)
	assert.Equal(t, "(//div[contains(@class, 'MuiSelect-select')])[2]", LocateControl(RoleYear).Value)
	assert.Equal(t, "(//div[contains(@class, 'MuiSelect-select')])[3]", LocateControl(RoleRegion).Value)
	assert.Equal(t, "(//div[contains(@class, 'MuiSelect-select')])[4]", LocateControl(RoleSubRegion).Value)
}

func TestViewToggle(t *testing.T) {
	assert.Equal(t, "//button[contains(text(), 'Mesečno')]", ViewToggle(models.ViewMonthly).Value)
	assert.Equal(t, "//button[contains(text(), 'Kvartalno')]", ViewToggle(models.ViewQuarterly).Value)
}

func TestOptionQuoting(t *testing.T) {
	assert.Equal(t, "//li[contains(@class, 'MuiMenuItem-root') and text()='2023']", Option("2023").Value)
	assert.Equal(t, `//li[contains(@class, 'MuiMenuItem-root') and text()="Jovan's"]`, Option("Jovan's").Value)
	assert.Equal(t, `concat('a', "'", 'b"c')`, xpathLiteral(`a'b"c`))
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "sub-region", RoleSubRegion.String())
	assert.Equal(t, "role(9)", Role(9).String())
}
