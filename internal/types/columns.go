package types

// Column headers of the source workbooks and the output table. The order and
// master workbooks are maintained by hand, so the loaders compare headers
// with whitespace removed (the ERP columns carry line breaks).
const (
	ColOrderCode     = "판매몰상품번호/딜번호[출력]"
	ColOrderName     = "원상품명(쇼핑몰)[출력]"
	ColOrderOption   = "원옵션(쇼핑몰)[출력]"
	ColOrderQuantity = "수량[출력]"

	ColGroupKey      = "상품명구분1"
	ColSeparationTag = "옵션분리구분2"
	ColPartCode      = "판매몰상품번호/딜번호"
	ColPartName      = "원상품명_쇼핑몰"
	ColPartOption    = "원옵션_쇼핑몰"

	ColSupplier       = "매입처"
	ColCatalogCode    = "상품코드"
	ColERPName        = "상품명_ERP기준\n(빈칸삭제)"
	ColERPOption      = "옵션명_ERP기준\n(옵션공란NO채우기)"
	ColPOName         = "상품명_발주서기준"
	ColPOOption       = "옵션명_발주서기준\n(옵션 공란 남겨두기)"
	ColListPrice      = "기준판매가"
	ColUnitCost       = "매입단가"
	ColPackMultiplier = "단위수량"

	// Derived output columns.
	ColKey            = "상품명구분"
	ColSeparation     = "옵션분리"
	ColOrderQty       = "발주수량"
	ColListValueTotal = "기준판매가합계"
	ColCostValueTotal = "매입가합계"
)

// Default sheet names.
const (
	SheetOrders        = "통합주문리스트"
	SheetOptionMapping = "옵션분리"
	SheetCatalog       = "마스터"
)
